package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scentmatch-backend/internal/bootstrap"
	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/server"
	"scentmatch-backend/internal/shared/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	telemetry.Configure(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap failed", map[string]any{"error": err.Error()})
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("close failed", map[string]any{"error": err.Error()})
		}
	}()

	go app.RunSessionJanitor(ctx)

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Info("api starting", map[string]any{"addr": addr, "env": cfg.Env})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("server error", map[string]any{"error": err.Error()})
		return 1
	}
	return 0
}
