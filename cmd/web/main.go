package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shivansh-Raheja/admin-panel/internal/config"
	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	apphttp "github.com/Shivansh-Raheja/admin-panel/internal/http"
	"github.com/Shivansh-Raheja/admin-panel/internal/metrics"
	"github.com/Shivansh-Raheja/admin-panel/internal/modules/auth"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	cfg, err := config.WebFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	resources, err := schema.Load(cfg.ResourcesFile)
	if err != nil {
		log.Fatalf("resources: %v", err)
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout}

	var (
		collector *metrics.Collector
		observer  resource.Observer
	)
	if cfg.Metrics {
		collector = metrics.New()
		observer = collector
	}

	builder := controller.Builder{
		BaseURL:   cfg.APIBaseURL(),
		Resources: resources,
		HTTP:      hc,
		Observer:  observer,
		Log:       logger,
	}
	controllers := controller.NewRegistry(builder.Build, cfg.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweep(ctx, controllers, cfg.SessionTTL, logger)

	r := apphttp.NewRouter(apphttp.Deps{
		Log:         logger,
		Config:      cfg,
		Resources:   resources,
		Controllers: controllers,
		Auth:        auth.NewService(cfg.APIBaseURL(), hc, logger),
		Metrics:     collector,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("web_listening", slog.String("addr", cfg.Addr), slog.String("api", cfg.APIBaseURL()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", slog.Any("err", err))
	}
}

// sweep unmounts controllers of sessions that have gone idle.
func sweep(ctx context.Context, reg *controller.Registry, ttl time.Duration, logger *slog.Logger) {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.Sweep(); n > 0 {
				logger.Info("controllers_swept", slog.Int("count", n))
			}
		}
	}
}
