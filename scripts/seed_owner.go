package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/adapters/persistence"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/pkg/auth"
	"github.com/khoahotran/folio/pkg/logger"
)

func main() {
	fmt.Println("adding owner into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	email := strings.ToLower(strings.TrimSpace(os.Getenv("OWNER_EMAIL")))
	password := os.Getenv("OWNER_PASSWORD")
	if email == "" || len(password) < 8 {
		appLogger.Fatal("OWNER_EMAIL and OWNER_PASSWORD (at least 8 characters) are required", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		appLogger.Fatal("cannot hash password", err)
	}

	ctx := context.Background()
	pool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect DB", err)
	}
	defer pool.Close()

	owner, err := persistence.NewPostgresUserRepo(pool, appLogger).UpsertOwner(ctx, email, hash)
	if err != nil {
		appLogger.Fatal("cannot add user", err)
	}

	appLogger.Info("added or updated owner successfully", zap.String("email", owner.Email), zap.String("id", owner.ID.String()))
}
