package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zuulgate/zuul/backend/internal/config"
	"github.com/zuulgate/zuul/backend/internal/database"
	"github.com/zuulgate/zuul/backend/internal/geo"
	"github.com/zuulgate/zuul/backend/internal/logger"
	"github.com/zuulgate/zuul/backend/internal/server"
	"github.com/zuulgate/zuul/backend/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and a rotated file next to the database.
	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "zuul.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.WithFields(map[string]interface{}{
		"version": version.Full(),
		"port":    cfg.HTTPPort,
	}).Infof("starting %s backend", version.Name)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	var resolver geo.Resolver = geo.NoopResolver{}
	if cfg.GeoDBPath != "" {
		mm, err := geo.Open(cfg.GeoDBPath)
		if err != nil {
			logger.WithError(err).Warn("geo database unavailable, continuing without enrichment")
		} else {
			defer mm.Close()
			resolver = mm
		}
	}

	srv, err := server.New(db, cfg, resolver)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
