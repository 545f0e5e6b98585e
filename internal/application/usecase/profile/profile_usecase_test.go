package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contentUC "github.com/khoahotran/folio/internal/application/usecase/content"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type profileTable struct {
	rows []profile.Profile
}

func (t *profileTable) Name() string { return content.TableProfile }

func (t *profileTable) Select(context.Context, content.Query) ([]profile.Profile, error) {
	return t.rows, nil
}

func (t *profileTable) Get(_ context.Context, id int64) (profile.Profile, error) {
	for _, r := range t.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return profile.Profile{}, apperror.NewNotFound("profile", "")
}

func (t *profileTable) Insert(_ context.Context, row profile.Profile) (profile.Profile, error) {
	t.rows = append(t.rows, row)
	return row, nil
}

func (t *profileTable) Update(_ context.Context, _ int64, row profile.Profile) (profile.Profile, error) {
	return row, nil
}

func (t *profileTable) Delete(context.Context, int64) error { return nil }

func (t *profileTable) Upsert(_ context.Context, row profile.Profile) (profile.Profile, error) {
	for i, r := range t.rows {
		if r.ID == row.ID {
			t.rows[i] = row
			return row, nil
		}
	}
	t.rows = append(t.rows, row)
	return row, nil
}

func newUseCase(rows ...profile.Profile) (*ProfileUseCase, *profileTable) {
	table := &profileTable{rows: rows}
	crud := contentUC.NewCRUDUseCase[profile.Profile](table, nil, contentUC.CleanProfile, nil, logger.NewNop())
	return NewProfileUseCase(crud), table
}

func TestGetProfile_EmptyStore(t *testing.T) {
	uc, _ := newUseCase()
	out, err := uc.ExecuteGetProfile(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Exists)
	assert.Equal(t, profile.SingletonID, out.Profile.ID)
}

func TestGetProfile_FirstRowIsAuthoritative(t *testing.T) {
	uc, _ := newUseCase(profile.Profile{ID: 3, DisplayName: "first"}, profile.Profile{ID: 4, DisplayName: "second"})
	out, err := uc.ExecuteGetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", out.Profile.DisplayName)
}

func TestUpdateProfile_UpsertsUnderExistingOrFixedKey(t *testing.T) {
	uc, table := newUseCase()
	out, err := uc.ExecuteUpdateProfile(context.Background(), UpdateProfileInput{DisplayName: "Khoa"})
	require.NoError(t, err)
	assert.Equal(t, profile.SingletonID, out.Profile.ID)
	require.Len(t, table.rows, 1)

	_, err = uc.ExecuteUpdateProfile(context.Background(), UpdateProfileInput{DisplayName: "Khoa T."})
	require.NoError(t, err)
	require.Len(t, table.rows, 1)
	assert.Equal(t, "Khoa T.", table.rows[0].DisplayName)
}
