package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/jwtvalidator/internal/app"
	"github.com/dropDatabas3/jwtvalidator/internal/config"
	"github.com/dropDatabas3/jwtvalidator/internal/http/router"
	"github.com/dropDatabas3/jwtvalidator/internal/metrics"
	"github.com/dropDatabas3/jwtvalidator/internal/observability/logger"
)

var version = "dev"

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" && fileExists("configs/config.yaml") {
		path = "configs/config.yaml"
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagExpose     = flag.Bool("expose-claims", false, "incluye el payload completo en /v1/me")
	)
	flag.Parse()

	if fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfg, err := loadConfig(*flagConfigPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	zlog := logger.L()

	container, err := app.Build(cfg)
	if err != nil {
		zlog.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			zlog.Warn("cleanup failed", logger.Err(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container.Warm(ctx)

	deps := router.Deps{
		Verifier:      container.Verifier,
		Keys:          container.Keys,
		Version:       version,
		AuthMandatory: cfg.Auth.Mandatory,
		ExposeClaims:  *flagExpose,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := metrics.Register(reg); err != nil {
			zlog.Fatal("metrics registration failed", logger.Err(err))
		}
		deps.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		deps.MetricsPath = cfg.Metrics.Path
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", logger.String("addr", cfg.Server.Addr), logger.String("keys_host", cfg.Keys.Host))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", logger.Err(err))
		}
	case <-ctx.Done():
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("graceful shutdown failed", logger.Err(err))
		}
	}
}
