package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	mediaUC "github.com/khoahotran/folio/internal/application/usecase/media"
	"github.com/khoahotran/folio/internal/domain/media"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type ImageUploadService interface {
	Execute(ctx context.Context, input mediaUC.UploadImageInput) (*mediaUC.UploadImageOutput, error)
}

type MediaHandler struct {
	uploadImageUC ImageUploadService
	logger        logger.Logger
}

func NewMediaHandler(uploadUC ImageUploadService, log logger.Logger) *MediaHandler {
	return &MediaHandler{uploadImageUC: uploadUC, logger: log}
}

// UploadImage takes a multipart form with "file" and "folder".
func (h *MediaHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxImageSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	output, err := h.uploadImageUC.Execute(c.Request.Context(), mediaUC.UploadImageInput{
		Folder:      c.PostForm("folder"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, UploadResponse{URL: output.URL, Path: output.Path})
}
