package service

import (
	"context"
	"time"
)

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactRelay forwards a contact form submission to the owner's inbox.
type ContactRelay interface {
	Relay(ctx context.Context, msg ContactMessage) error
}

// RateCounter counts hits on key within a fixed window starting at the
// first hit.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}
