package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/adapters/event"
	"github.com/khoahotran/folio/adapters/media_storage"
	backupUC "github.com/khoahotran/folio/internal/application/usecase/backup"
	mediaUC "github.com/khoahotran/folio/internal/application/usecase/media"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/pkg/logger"
)

func main() {
	fmt.Println("Starting Folio Worker...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env).Named("worker")
	defer appLogger.Sync()

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Kafka brokers are required for the worker", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader, err := media_storage.NewUploader(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	reapOrphanUC := mediaUC.NewReapOrphanUseCase(uploader, appLogger)

	if cfg.Backup.Interval > 0 {
		backup := backupUC.NewBackupUseCase(backupUC.NewPgDumper(cfg.DB.DSN), uploader, appLogger)
		go runBackups(ctx, backup, cfg.Backup.Interval, appLogger)
	}

	contentConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicContentEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer contentConsumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicContentEvents), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := contentConsumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		e, err := event.DecodeContentEvent(msg)
		if err != nil {
			appLogger.Error("Failed to decode content event, skipping", err)
			commitMessage(contentConsumer, msg, appLogger)
			continue
		}

		msgLog := appLogger.With(
			zap.String("table", e.Table),
			zap.String("operation", string(e.Operation)),
			zap.Int64("id", e.ID),
		)

		if orphan := e.OrphanedImage(); orphan != "" {
			out, err := reapWithRetry(ctx, reapOrphanUC, orphan)
			if err != nil {
				msgLog.Error("Failed to reap orphaned image, giving up", err, zap.String("url", orphan))
			} else {
				msgLog.Info("Processed content event", zap.String("deleted", out.Deleted))
			}
		}

		commitMessage(contentConsumer, msg, appLogger)
	}
}

const reapAttempts = 3

func reapWithRetry(ctx context.Context, uc *mediaUC.ReapOrphanUseCase, url string) (*mediaUC.ReapOrphanOutput, error) {
	var err error
	for attempt := 1; attempt <= reapAttempts; attempt++ {
		var out *mediaUC.ReapOrphanOutput
		if out, err = uc.Execute(ctx, url); err == nil {
			return out, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, err
}

func runBackups(ctx context.Context, backup *backupUC.BackupUseCase, every time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out, err := backup.Execute(ctx)
			if err != nil {
				log.Error("Database backup failed", err)
				continue
			}
			log.Info("Database backup uploaded", zap.String("url", out.URL), zap.Int("size", out.Size))
		}
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
