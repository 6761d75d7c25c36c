package model

import "context"

// Mode is the session's position in the relay sub-machine.
type Mode string

const (
	ModeActive                    Mode = "active"
	ModeAwaitingRelayConfirmation Mode = "awaiting_relay_confirmation"
	ModeInDialogue                Mode = "in_dialogue"
)

// Session is the per-user dialogue state.
type Session struct {
	UserID      int64             `json:"user_id"`
	CurrentNode string            `json:"current_node"`
	Mode        Mode              `json:"mode"`
	Fields      map[string]string `json:"fields"`
	// PendingRelay holds free text awaiting the user's confirm/deny choice.
	PendingRelay string `json:"pending_relay,omitempty"`
	// LastAdminThreadID mirrors the thread directory for this user.
	LastAdminThreadID int `json:"last_admin_thread_id,omitempty"`
}

// NewSession returns an empty active session.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, Mode: ModeActive, Fields: map[string]string{}}
}

// Field returns a captured field or "".
func (s *Session) Field(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}

// Set stores a captured field.
func (s *Session) Set(name, value string) {
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}
	s.Fields[name] = value
}

type SessionStore interface {
	// Get returns the session for a user, or nil when none is recorded.
	Get(ctx context.Context, userID int64) (*Session, error)

	// Set stores the session, replacing any previous state.
	Set(ctx context.Context, s *Session) error

	// Clear removes the user's session.
	Clear(ctx context.Context, userID int64) error
}
