// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Shivansh-Raheja/admin-panel/internal/storage"
)

// Web is the configuration of the dashboard server.
type Web struct {
	Addr          string
	APIOrigin     string
	APIBasePath   string
	SessionSecret []byte
	FlashSecret   []byte
	CookieSecure  bool
	SessionTTL    time.Duration
	ResourcesFile string
	HTTPTimeout   time.Duration
	Metrics       bool
	LogLevel      slog.Level
}

// APIBaseURL is the root all resource endpoints hang off.
func (w Web) APIBaseURL() string {
	return strings.TrimRight(w.APIOrigin, "/") + "/" + strings.Trim(w.APIBasePath, "/")
}

// WebFromEnv reads the dashboard configuration. SESSION_SECRET and
// FLASH_SECRET are required outside development.
func WebFromEnv() (Web, error) {
	cfg := Web{
		Addr:          envOr("ADDR", ":8080"),
		APIOrigin:     envOr("API_ORIGIN", "http://localhost:8081"),
		APIBasePath:   envOr("API_BASE_PATH", "/admin_api"),
		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		FlashSecret:   []byte(os.Getenv("FLASH_SECRET")),
		ResourcesFile: os.Getenv("RESOURCES_FILE"),
	}

	var err error
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", false); err != nil {
		return Web{}, err
	}
	if cfg.Metrics, err = envBool("METRICS_ENABLED", true); err != nil {
		return Web{}, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return Web{}, err
	}
	// 0 keeps the transport default of no timeout
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 0); err != nil {
		return Web{}, err
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return Web{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	dev := envOr("APP_ENV", "development") == "development"
	if len(cfg.SessionSecret) == 0 || len(cfg.FlashSecret) == 0 {
		if !dev {
			return Web{}, fmt.Errorf("SESSION_SECRET and FLASH_SECRET are required")
		}
		if len(cfg.SessionSecret) == 0 {
			cfg.SessionSecret = []byte("dev-session-secret")
		}
		if len(cfg.FlashSecret) == 0 {
			cfg.FlashSecret = []byte("dev-flash-secret")
		}
	}
	return cfg, nil
}

// MockAPI is the configuration of the reference backend.
type MockAPI struct {
	Addr          string
	BasePath      string
	DSN           string
	AdminEmail    string
	AdminPassword string
	AdminName     string
	LogLevel      slog.Level
	Storage       storage.Config
}

func MockAPIFromEnv() (MockAPI, error) {
	cfg := MockAPI{
		Addr:          envOr("MOCKAPI_ADDR", ":8081"),
		BasePath:      envOr("API_BASE_PATH", "/admin_api"),
		DSN:           os.Getenv("DB_DSN"),
		AdminEmail:    envOr("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: envOr("ADMIN_PASSWORD", "admin123"),
		AdminName:     envOr("ADMIN_NAME", "Admin"),
		Storage: storage.Config{
			Driver:          envOr("STORAGE_DRIVER", "local"),
			LocalDir:        envOr("LOCAL_UPLOAD_DIR", "./storage/uploads"),
			S3Region:        os.Getenv("S3_REGION"),
			S3Bucket:        os.Getenv("S3_BUCKET"),
			S3Prefix:        envOr("S3_PREFIX", "uploads"),
			S3PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
		},
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return MockAPI{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
