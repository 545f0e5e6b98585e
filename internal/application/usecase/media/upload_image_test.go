package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type fakeStorage struct {
	uploads map[string]string
	deleted []string
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string]string{}}
}

func (f *fakeStorage) Upload(_ context.Context, file io.Reader, obj service.Object) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.uploads[obj.Path] = string(b)
	return "https://storage.test/" + obj.Path, nil
}

func (f *fakeStorage) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, "https://storage.test/") {
		return service.ErrForeignObject
	}
	f.deleted = append(f.deleted, url)
	return f.err
}

func TestUploadImage(t *testing.T) {
	store := newFakeStorage()
	uc := NewUploadImageUseCase(store, logger.NewNop())
	uc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	out, err := uc.Execute(context.Background(), UploadImageInput{
		Folder: "projects", FileName: "shot.png", ContentType: "image/png", Size: 3, File: strings.NewReader("png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/project-1700000000000.png", out.Path)
	assert.Equal(t, "https://storage.test/projects/project-1700000000000.png", out.URL)
	assert.Equal(t, "png", store.uploads[out.Path])
}

func TestUploadImage_Rejections(t *testing.T) {
	uc := NewUploadImageUseCase(newFakeStorage(), logger.NewNop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, UploadImageInput{Folder: "projects", ContentType: "application/zip", Size: 1, File: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = uc.Execute(ctx, UploadImageInput{Folder: "secrets", ContentType: "image/png", Size: 1, File: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUploadImage_StorageFailure(t *testing.T) {
	store := newFakeStorage()
	store.err = errors.New("bucket offline")
	uc := NewUploadImageUseCase(store, logger.NewNop())

	_, err := uc.Execute(context.Background(), UploadImageInput{Folder: "avatars", ContentType: "image/png", Size: 1, File: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestReapOrphan(t *testing.T) {
	store := newFakeStorage()
	uc := NewReapOrphanUseCase(store, logger.NewNop())
	ctx := context.Background()

	out, err := uc.Execute(ctx, "https://storage.test/projects/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/projects/a.png", out.Deleted)

	out, err = uc.Execute(ctx, "https://images.unsplash.com/photo.png")
	require.NoError(t, err)
	assert.Empty(t, out.Deleted)

	out, err = uc.Execute(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, out.Deleted)
	assert.Len(t, store.deleted, 1)
}
