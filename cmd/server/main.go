package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlashLeaderserver/internal/app"
	"FlashLeaderserver/internal/config"
	"FlashLeaderserver/internal/httpapi"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown: close dependencies", "err", err)
		}
	}()

	handler := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         a.DBPing,
		Games:          a.Games,
		Friends:        a.Friends,
		Leaderboard:    a.Leaderboard,
		Notifications:  a.Notifications,
		Metrics:        httpapi.NewHTTPMetrics(a.Registry),
		MetricsHandler: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry}),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr, "scoring_mode", cfg.ScoringMode, "db_enabled", cfg.DBDSN != "")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("shutdown: http server", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}
