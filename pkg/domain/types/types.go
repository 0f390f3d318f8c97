package types

import "github.com/google/uuid"

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// SessionID identifies one browser session and its workspace
type SessionID string

// NewSessionID returns a new random session ID
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// String returns the session ID as string
func (x SessionID) String() string {
	return string(x)
}

// Validate checks that the session ID is a well-formed UUID
func (x SessionID) Validate() bool {
	_, err := uuid.Parse(string(x))
	return err == nil
}
