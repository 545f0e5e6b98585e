package http

import (
	"time"

	"github.com/khoahotran/folio/internal/domain/session"
)

// Auth DTOs

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionDTO struct {
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Session     SessionDTO `json:"session"`
}

type SessionResponse struct {
	Session *SessionDTO `json:"session"`
}

func ToSessionDTO(s *session.Session) *SessionDTO {
	if s == nil {
		return nil
	}
	return &SessionDTO{
		OwnerID:   s.OwnerID.String(),
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

// Public content DTOs

// ListResponse wraps a public collection. Fallback is set while the bundled
// sample content is served instead of the store's rows.
type ListResponse[T any] struct {
	Items       []T       `json:"items"`
	Fallback    bool      `json:"fallback"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Profile DTOs

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Headline    string `json:"headline"`
	AboutText   string `json:"about_text"`
	AvatarURL   string `json:"avatar_url"`
}

// Media DTOs

type UploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Contact DTOs

type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}
