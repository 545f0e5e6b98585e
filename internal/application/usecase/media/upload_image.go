package media

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type UploadImageUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
	now      func() time.Time
}

func NewUploadImageUseCase(u service.Uploader, log logger.Logger) *UploadImageUseCase {
	return &UploadImageUseCase{uploader: u, logger: log, now: time.Now}
}

type UploadImageInput struct {
	Folder      string
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

type UploadImageOutput struct {
	URL  string
	Path string
}

func (uc *UploadImageUseCase) Execute(ctx context.Context, input UploadImageInput) (*UploadImageOutput, error) {
	folder, err := media.ParseFolder(input.Folder)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	if err := media.ValidateImage(input.ContentType, input.Size); err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	objectPath := media.ObjectPath(folder, uc.now(), input.FileName, input.ContentType)
	// Cap the read so a lying Content-Length cannot stream past the limit.
	body := io.LimitReader(input.File, media.MaxImageSize+1)

	url, err := uc.uploader.Upload(ctx, body, service.Object{
		Path:        objectPath,
		ContentType: input.ContentType,
		Size:        input.Size,
	})
	if err != nil {
		uc.logger.Error("Image upload failed", err, zap.String("path", objectPath))
		return nil, apperror.NewUpstream("failed to upload image", err)
	}

	uc.logger.Info("Image uploaded", zap.String("path", objectPath), zap.String("url", url))
	return &UploadImageOutput{URL: url, Path: objectPath}, nil
}

type ReapOrphanUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
}

func NewReapOrphanUseCase(u service.Uploader, log logger.Logger) *ReapOrphanUseCase {
	return &ReapOrphanUseCase{uploader: u, logger: log}
}

type ReapOrphanOutput struct {
	Deleted string
}

// Execute deletes the image a change event left unreferenced. Images held
// by another storage are skipped.
func (uc *ReapOrphanUseCase) Execute(ctx context.Context, imageURL string) (*ReapOrphanOutput, error) {
	if imageURL == "" {
		return &ReapOrphanOutput{}, nil
	}
	l := uc.logger.With(zap.String("url", imageURL))

	if err := uc.uploader.Delete(ctx, imageURL); err != nil {
		if errors.Is(err, service.ErrForeignObject) {
			l.Info("Orphaned image is not ours, skipping")
			return &ReapOrphanOutput{}, nil
		}
		return nil, apperror.NewUpstream("failed to delete orphaned image", err)
	}
	l.Info("Deleted orphaned image")
	return &ReapOrphanOutput{Deleted: imageURL}, nil
}
