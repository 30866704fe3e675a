package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Shivansh-Raheja/admin-panel/internal/config"
	"github.com/Shivansh-Raheja/admin-panel/internal/mockapi"
	"github.com/Shivansh-Raheja/admin-panel/internal/storage"
)

// mockapi serves a local copy of the catalog backend. Records live in
// memory unless DB_DSN points at MySQL.
func main() {
	_ = godotenv.Load()

	cfg, err := config.MockAPIFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	addr := flag.String("addr", cfg.Addr, "listen address")
	seed := flag.Bool("seed", true, "fill empty collections with sample records")
	requireToken := flag.Bool("require-token", false, "reject collection calls without a login token")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx := context.Background()

	var store mockapi.Store = mockapi.NewMemoryStore()
	if cfg.DSN != "" {
		db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		store = mockapi.NewGormStore(db)
	}

	files, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	if *seed {
		if err := mockapi.Seed(ctx, store); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	hash, err := mockapi.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	api := mockapi.New(store, files.Storage, mockapi.Admin{
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
	}, logger)
	api.RequireToken = *requireToken

	gin.SetMode(gin.ReleaseMode)
	logger.Info("mockapi_listening",
		slog.String("addr", *addr),
		slog.String("base_path", cfg.BasePath),
		slog.String("storage", files.Driver),
		slog.Bool("mysql", cfg.DSN != ""),
	)
	if err := api.Handler(cfg.BasePath, files.LocalDir).Run(*addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
