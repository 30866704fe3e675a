package storage

import (
	"context"
	"errors"
	"fmt"
)

// Config selects and configures the upload driver.
type Config struct {
	Driver   string // local or s3
	LocalDir string

	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

type FactoryResult struct {
	Driver  string
	Storage Storage
	// LocalDir is set for the local driver so the files can be served.
	LocalDir string
}

// Open builds the configured driver. Local uploads are reported under the
// "uploads" prefix, which the mock backend serves from LocalDir.
func Open(ctx context.Context, cfg Config) (FactoryResult, error) {
	switch cfg.Driver {
	case "", "local":
		dir := cfg.LocalDir
		if dir == "" {
			dir = "./storage/uploads"
		}
		return FactoryResult{Driver: "local", Storage: NewLocal(dir, "uploads"), LocalDir: dir}, nil

	case "s3":
		if cfg.S3Region == "" || cfg.S3Bucket == "" || cfg.S3PublicBaseURL == "" {
			return FactoryResult{}, errors.New("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
		}
		s, err := NewS3(ctx, S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "s3", Storage: s}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
