package content

import (
	"context"
	"errors"
	"time"
)

type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
	// OpReload tells listeners that events may have been missed and the
	// whole table should be refetched.
	OpReload Operation = "RELOAD"
)

type ChangeEvent struct {
	Table            string    `json:"table"`
	Operation        Operation `json:"operation"`
	ID               int64     `json:"id,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	PreviousImageURL string    `json:"previous_image_url,omitempty"`
	At               time.Time `json:"at"`
}

// OrphanedImage returns the image URL that is no longer referenced after
// this event, if any.
func (e ChangeEvent) OrphanedImage() string {
	switch e.Operation {
	case OpDelete:
		if e.PreviousImageURL != "" {
			return e.PreviousImageURL
		}
		return e.ImageURL
	case OpUpdate:
		if e.PreviousImageURL != "" && e.PreviousImageURL != e.ImageURL {
			return e.PreviousImageURL
		}
	}
	return ""
}

type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Subscription is a live feed of change events. Close releases it and
// closes the Events channel.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, tables ...string) (Subscription, error)
}

// MultiPublisher publishes to every publisher in order and returns the
// joined errors. A failing publisher does not stop the others.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
