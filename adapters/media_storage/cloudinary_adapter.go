package media_storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/pkg/logger"
)

type cloudinaryAdapter struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	root      string
	logger    logger.Logger
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.Uploader, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.", zap.String("cloud", cfg.Cloudinary.CloudName))
	return &cloudinaryAdapter{
		cld:       cld,
		cloudName: cfg.Cloudinary.CloudName,
		root:      strings.Trim(cfg.Cloudinary.Folder, "/"),
		logger:    log,
	}, nil
}

func (a *cloudinaryAdapter) Upload(ctx context.Context, file io.Reader, obj service.Object) (string, error) {
	dir, name := path.Split(obj.Path)
	folder := strings.Trim(path.Join(a.root, dir), "/")
	publicID := strings.TrimSuffix(name, path.Ext(name))

	resourceType := "image"
	if !strings.HasPrefix(obj.ContentType, "image/") {
		resourceType = "raw"
	}

	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

func (a *cloudinaryAdapter) Delete(ctx context.Context, publicURL string) error {
	publicID, resourceType, err := cloudinaryPublicID(a.cloudName, publicURL)
	if err != nil {
		return err
	}
	_, err = a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// cloudinaryPublicID extracts the public id from a delivery URL of the form
// https://res.cloudinary.com/<cloud>/<type>/upload/[v123/]<folder>/<id>.<ext>
func cloudinaryPublicID(cloudName, publicURL string) (publicID, resourceType string, err error) {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host != "res.cloudinary.com" {
		return "", "", service.ErrForeignObject
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != cloudName || parts[2] != "upload" {
		return "", "", service.ErrForeignObject
	}
	resourceType = parts[1]
	rest := parts[3:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	id := strings.Join(rest, "/")
	if resourceType != "raw" {
		id = strings.TrimSuffix(id, path.Ext(id))
	}
	return id, resourceType, nil
}
