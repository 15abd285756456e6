package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pmml-exporter/internal/cfg"
	"pmml-exporter/internal/common"
	"pmml-exporter/internal/export"
	"pmml-exporter/internal/metrics"
	"pmml-exporter/internal/publish"
	"pmml-exporter/internal/server"
	"pmml-exporter/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Initialize components
	m := metrics.New()
	mw := metrics.NewWrapper(m)
	exporter := export.New(export.DefaultSupport(), mw)

	var store server.Store
	if s := initializeStorage(c); s != nil {
		defer s.Close()
		store = s
	}

	var publisher server.Publisher
	if c.ScoringURL != "" {
		client := publish.NewClient(c.ScoringURL, c.RESTTimeout)
		client.SetMetrics(mw)
		publisher = client
		log.Info().Str("url", c.ScoringURL).Msg("scoring engine publishing enabled")
	}

	srv := server.New(exporter, store, publisher, mw, c.ListenPort)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info().
		Str("version", common.Version).
		Int("port", c.ListenPort).
		Bool("history", store != nil).
		Msg("pmmld started")

	waitForShutdown(srv, errCh)
}

// initializeStorage initializes storage if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without export history")
			return nil
		}
		return store
	}
	return nil
}

func waitForShutdown(srv *server.ExportServer, errCh <-chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("export server failed")
	}

	log.Info().Msg("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
