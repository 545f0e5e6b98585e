package media_storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/pkg/logger"
)

type minioAdapter struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    logger.Logger
}

// NewMinIOAdapter connects to the bucket, creating it with a public-read
// policy if it does not exist yet.
func NewMinIOAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.Uploader, error) {
	mc := cfg.MinIO
	if mc.Endpoint == "" || mc.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket must be configured")
	}

	client, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKeyID, mc.SecretAccessKey, ""),
		Secure: mc.UseSSL,
		Region: mc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, mc.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", mc.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, mc.Bucket, minio.MakeBucketOptions{Region: mc.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", mc.Bucket, err)
		}
		if err := client.SetBucketPolicy(ctx, mc.Bucket, publicReadPolicy(mc.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy %q: %w", mc.Bucket, err)
		}
		log.Info("Created MinIO bucket", zap.String("bucket", mc.Bucket))
	}

	public := mc.PublicEndpoint
	if public == "" {
		scheme := "http"
		if mc.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + mc.Endpoint
	}

	log.Info("Connect MinIO successfully.", zap.String("endpoint", mc.Endpoint), zap.String("bucket", mc.Bucket))
	return &minioAdapter{
		client:    client,
		bucket:    mc.Bucket,
		publicURL: strings.TrimSuffix(public, "/") + "/" + mc.Bucket + "/",
		logger:    log,
	}, nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func (a *minioAdapter) Upload(ctx context.Context, file io.Reader, obj service.Object) (string, error) {
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	info, err := a.client.PutObject(ctx, a.bucket, obj.Path, file, size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload minio: %w", err)
	}
	return a.publicURL + info.Key, nil
}

func (a *minioAdapter) Delete(ctx context.Context, publicURL string) error {
	key, ok := strings.CutPrefix(publicURL, a.publicURL)
	if !ok || key == "" {
		return service.ErrForeignObject
	}
	if u, err := url.Parse(publicURL); err != nil || u.RawQuery != "" {
		return service.ErrForeignObject
	}
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete minio object %q: %w", key, err)
	}
	return nil
}
