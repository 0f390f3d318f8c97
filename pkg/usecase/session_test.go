package usecase_test

import (
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
	"github.com/m-mizutani/sheetmerge/pkg/infra/spreadsheet"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSessions_Workspace(t *testing.T) {
	defaults := model.FilterSettings{RowsToSkip: 2, ColumnNumber: 3}
	sessions := usecase.NewSessions(spreadsheet.New(), usecase.WithDefaultSettings(defaults))

	a := types.NewSessionID()
	b := types.NewSessionID()

	wsA := sessions.Workspace(a)
	gt.True(t, sessions.Workspace(a) == wsA)
	gt.False(t, sessions.Workspace(b) == wsA)
	gt.Value(t, sessions.Len()).Equal(2)
	gt.Value(t, wsA.Settings()).Equal(defaults)

	_, ok := sessions.Lookup(types.NewSessionID())
	gt.False(t, ok)
}

func TestSessions_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	sessions := usecase.NewSessions(spreadsheet.New(),
		usecase.WithClock(clock.Now),
		usecase.WithSessionTTL(10*time.Minute),
		usecase.WithSweepInterval(time.Minute),
	)

	idle := types.NewSessionID()
	active := types.NewSessionID()
	sessions.Workspace(idle)
	sessions.Workspace(active)

	clock.Advance(8 * time.Minute)
	sessions.Workspace(active).Snapshot()

	clock.Advance(5 * time.Minute)
	gt.True(t, sessions.SweepDue())
	gt.False(t, sessions.SweepDue())

	gt.Value(t, sessions.Sweep()).Equal(1)
	gt.Value(t, sessions.Len()).Equal(1)

	_, ok := sessions.Lookup(active)
	gt.True(t, ok)
	_, ok = sessions.Lookup(idle)
	gt.False(t, ok)
}
