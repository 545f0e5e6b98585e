package profile

import (
	"context"
	"fmt"

	contentUC "github.com/khoahotran/folio/internal/application/usecase/content"
	"github.com/khoahotran/folio/internal/domain/profile"
)

// ProfileUseCase treats the first profile row as the profile.
type ProfileUseCase struct {
	crud *contentUC.CRUDUseCase[profile.Profile]
}

func NewProfileUseCase(crud *contentUC.CRUDUseCase[profile.Profile]) *ProfileUseCase {
	return &ProfileUseCase{crud: crud}
}

type GetProfileOutput struct {
	Profile profile.Profile
	Exists  bool
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context) (*GetProfileOutput, error) {
	rows, err := uc.crud.List(ctx, contentUC.ListInput{})
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	if len(rows) == 0 {
		return &GetProfileOutput{Profile: profile.New()}, nil
	}
	return &GetProfileOutput{Profile: rows[0], Exists: true}, nil
}

type UpdateProfileInput struct {
	DisplayName string
	Headline    string
	AboutText   string
	AvatarURL   string
}

type UpdateProfileOutput struct {
	Profile profile.Profile
}

// ExecuteUpdateProfile overwrites the authoritative row, or creates it under
// the fixed key.
func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	current, err := uc.ExecuteGetProfile(ctx)
	if err != nil {
		return nil, err
	}

	p := profile.Profile{
		ID:          current.Profile.ID,
		DisplayName: input.DisplayName,
		Headline:    input.Headline,
		AboutText:   input.AboutText,
		AvatarURL:   input.AvatarURL,
	}
	if p.ID == 0 {
		p.ID = profile.SingletonID
	}

	saved, err := uc.crud.Upsert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	return &UpdateProfileOutput{Profile: saved}, nil
}
