package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/Ahmadjajja/montana-specimens-mapper/internal/adapter/http"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/config"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/geo"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/observability"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// County boundaries are loaded once and shared read-only for the process
	// lifetime.
	counties, err := geo.LoadShapefile(cfg.CountyShapefile)
	if err != nil {
		logger.Error("failed to load county boundaries", "path", cfg.CountyShapefile, "error", err)
		os.Exit(1)
	}
	logger.Info("county boundaries loaded", "path", cfg.CountyShapefile, "counties", counties.Len())

	svc := pipeline.New(counties, pipeline.Options{
		RenderWidth:  cfg.RenderWidth,
		RenderHeight: cfg.RenderHeight,
		ExportDPI:    cfg.ExportDPI,
		ExportDir:    cfg.ExportDir,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
