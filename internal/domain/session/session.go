package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated sign-in of the owner. Token is the bearer
// credential handed to the client; it is never stored.
type Session struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

type Store interface {
	Save(ctx context.Context, s Session) error
	// Find returns nil, nil when the session does not exist or has expired.
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventKind string

const (
	EventSignedIn  EventKind = "SIGNED_IN"
	EventSignedOut EventKind = "SIGNED_OUT"
)

type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID uuid.UUID `json:"session_id"`
	At        time.Time `json:"at"`
}

// Listener is a live feed of auth events for one session.
type Listener interface {
	Events() <-chan Event
	Close() error
}

type Broadcaster interface {
	Announce(ctx context.Context, e Event) error
	Listen(ctx context.Context, sessionID uuid.UUID) (Listener, error)
}

// Subscription delivers the current session every time it changes. A nil
// value means the session is gone. Close must be called to release it.
type Subscription interface {
	Changes() <-chan *Session
	Close() error
}
