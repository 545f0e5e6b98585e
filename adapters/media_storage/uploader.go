package media_storage

import (
	"context"
	"fmt"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/pkg/logger"
)

// NewUploader builds the uploader selected by storage.provider.
func NewUploader(ctx context.Context, cfg config.Config, log logger.Logger) (service.Uploader, error) {
	switch cfg.Storage.Provider {
	case config.StorageCloudinary:
		return NewCloudinaryAdapter(cfg, log.Named("cloudinary"))
	case config.StorageMinIO:
		return NewMinIOAdapter(ctx, cfg, log.Named("minio"))
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
