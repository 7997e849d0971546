package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/app"
	"github.com/evhenko/tunesync/internal/auth"
	"github.com/evhenko/tunesync/internal/config"
	"github.com/evhenko/tunesync/internal/mail"
	"github.com/evhenko/tunesync/internal/storage"

	router "github.com/evhenko/tunesync/internal/adapters/http"
	ws "github.com/evhenko/tunesync/internal/adapters/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer store.Close()

	tokens := auth.NewTokenManager(cfg.Secret, cfg.TokenTTL)
	var mailer mail.Sender
	if smtp := mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.User, cfg.SMTP.Pass); smtp != nil {
		mailer = smtp
	}

	tracker := app.NewTracker()
	registry := app.NewRegistry(store, tracker, cfg.FreshnessWindow, cfg.BcryptCost)
	directory := app.NewDirectory(registry, tracker)
	if err := registry.Bootstrap(); err != nil {
		log.Fatal().Err(err).Msg("failed to restore locked rooms")
	}

	monitor := app.NewMonitor(registry, cfg.HeartbeatInterval)
	go monitor.Run(ctx)

	wsCtrl := &ws.Controller{
		Registry:   registry,
		Directory:  directory,
		Tracker:    tracker,
		Tokens:     tokens,
		SendBuffer: cfg.SendBuffer,
	}
	api := &router.API{
		Store:  store,
		Tokens: tokens,
		Mailer: mailer,
		Cfg:    cfg,
	}

	r := router.SetupRouter(ctx, cfg, wsCtrl, api)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("tunesync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	registry.Close()
	log.Info().Msg("Server exited gracefully")
}
