package usecase

import (
	"sync"
	"time"

	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
)

const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Sessions keeps one Workspace per browser session in memory
type Sessions struct {
	codec         interfaces.SpreadsheetCodec
	defaults      model.FilterSettings
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu         sync.Mutex
	workspaces map[types.SessionID]*Workspace
	lastSweep  time.Time
}

// SessionOption configures Sessions
type SessionOption func(*Sessions)

// WithDefaultSettings sets the filter settings of new workspaces
func WithDefaultSettings(settings model.FilterSettings) SessionOption {
	return func(s *Sessions) {
		s.defaults = settings.Normalize()
	}
}

// WithSessionTTL sets how long an idle workspace is kept
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets the minimum time between two sweeps
func WithSweepInterval(interval time.Duration) SessionOption {
	return func(s *Sessions) {
		s.sweepInterval = interval
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) SessionOption {
	return func(s *Sessions) {
		s.now = now
	}
}

// NewSessions creates an empty session registry
func NewSessions(codec interfaces.SpreadsheetCodec, opts ...SessionOption) *Sessions {
	s := &Sessions{
		codec:         codec,
		defaults:      model.DefaultFilterSettings(),
		ttl:           DefaultSessionTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		workspaces:    make(map[types.SessionID]*Workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Workspace returns the workspace of id, creating it on first use
func (x *Sessions) Workspace(id types.SessionID) *Workspace {
	x.mu.Lock()
	defer x.mu.Unlock()

	ws, ok := x.workspaces[id]
	if !ok {
		ws = newWorkspace(x.codec, x.defaults, x.now)
		x.workspaces[id] = ws
	}
	return ws
}

// Lookup returns the workspace of id without creating it
func (x *Sessions) Lookup(id types.SessionID) (*Workspace, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	ws, ok := x.workspaces[id]
	return ws, ok
}

// Len returns the number of live sessions
func (x *Sessions) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.workspaces)
}

// SweepDue reports whether a sweep should run now and, if so, records it as started
func (x *Sessions) SweepDue() bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := x.now()
	if now.Sub(x.lastSweep) < x.sweepInterval {
		return false
	}
	x.lastSweep = now
	return true
}

// Sweep drops workspaces idle for longer than the TTL and returns how many were dropped
func (x *Sessions) Sweep() int {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := x.now()
	removed := 0
	for id, ws := range x.workspaces {
		if now.Sub(ws.LastAccess()) > x.ttl {
			delete(x.workspaces, id)
			removed++
		}
	}
	return removed
}
