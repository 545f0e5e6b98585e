package backup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/pkg/logger"
)

const backupFolder = "backups/database"

// Dumper produces a database dump.
type Dumper interface {
	Dump(ctx context.Context) ([]byte, error)
}

type pgDumper struct {
	dsn string
}

// NewPgDumper shells out to pg_dump in custom format.
func NewPgDumper(dsn string) Dumper {
	return pgDumper{dsn: dsn}
}

func (d pgDumper) Dump(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump", "--dbname="+d.dsn, "--format=c")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

type BackupUseCase struct {
	dumper   Dumper
	uploader service.Uploader
	logger   logger.Logger
	now      func() time.Time
}

func NewBackupUseCase(dumper Dumper, uploader service.Uploader, log logger.Logger) *BackupUseCase {
	return &BackupUseCase{
		dumper:   dumper,
		uploader: uploader,
		logger:   log,
		now:      time.Now,
	}
}

type BackupOutput struct {
	URL  string
	Path string
	Size int
}

func (uc *BackupUseCase) Execute(ctx context.Context) (*BackupOutput, error) {
	uc.logger.Info("Starting database backup...")

	dump, err := uc.dumper.Dump(ctx)
	if err != nil {
		uc.logger.Error("Database dump failed", err)
		return nil, err
	}

	timestamp := uc.now().UTC().Format("2006-01-02_15-04-05")
	objectPath := fmt.Sprintf("%s/backup-%s.dump", backupFolder, timestamp)

	url, err := uc.uploader.Upload(ctx, bytes.NewReader(dump), service.Object{
		Path:        objectPath,
		ContentType: "application/octet-stream",
		Size:        int64(len(dump)),
	})
	if err != nil {
		uc.logger.Error("Failed to upload backup", err, zap.String("path", objectPath))
		return nil, fmt.Errorf("upload backup: %w", err)
	}

	uc.logger.Info("Database backup completed and uploaded successfully",
		zap.String("url", url),
		zap.String("path", objectPath),
		zap.Int("bytes", len(dump)),
	)
	return &BackupOutput{URL: url, Path: objectPath, Size: len(dump)}, nil
}
