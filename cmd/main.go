package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vlopbot/internal/api/handler"
	"vlopbot/internal/config"
	"vlopbot/internal/responses"
	"vlopbot/internal/telegram"
	"vlopbot/internal/tmdb"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	mode := "polling"
	if cfg.Production {
		mode = "webhook"
	}
	logger.Info("starting VLOP Telegram Bot", "version", config.Version, "mode", mode)

	lib, err := responses.NewLibrary(cfg.ResponsesDir)
	if err != nil {
		logger.Warn("failed to load response files", "error", err)
	}

	tmdbClient := tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, nil)

	botService, err := telegram.NewBotService(cfg, tmdbClient, lib, logger)
	if err != nil {
		logger.Error("failed to start Telegram bot", "error", err)
		os.Exit(1)
	}

	if cfg.Production {
		if err := botService.SetupWebhook(); err != nil {
			logger.Error("failed to set webhook", "error", err)
		}
	} else {
		go botService.Run()
	}

	r := gin.Default()
	h := handler.NewHandler(botService, mode, logger)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/webhook-info", h.WebhookInfo)
	r.POST("/reset-webhook", h.ResetWebhook)
	if cfg.Production {
		r.POST("/webhook", h.Webhook)
		r.GET("/webhook", h.WebhookStatus)
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("health check server running", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down gracefully")
	if !cfg.Production {
		botService.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
