package user

import (
	"context"

	"github.com/google/uuid"
)

// User is the site owner. There is exactly one.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	PasswordHash string    `json:"-"`
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpsertOwner(ctx context.Context, email, passwordHash string) (*User, error)
}
