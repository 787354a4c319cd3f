// Package handler exposes the HTTP surface of the bot: health/status
// endpoints and, in production, the Telegram webhook intake and webhook
// management endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vlopbot/internal/config"
)

// Bot is the subset of the bot service the HTTP layer needs.
type Bot interface {
	HandleUpdate(update tgbotapi.Update)
	WebhookInfo() (tgbotapi.WebhookInfo, error)
	ResetWebhook() (tgbotapi.WebhookInfo, error)
}

// Handler serves the health and webhook endpoints.
type Handler struct {
	bot     Bot
	mode    string
	started time.Time
	logger  *slog.Logger
}

// NewHandler creates a Handler. mode is "webhook" or "polling".
func NewHandler(bot Bot, mode string, logger *slog.Logger) *Handler {
	return &Handler{
		bot:     bot,
		mode:    mode,
		started: time.Now(),
		logger:  logger,
	}
}

// Root reports the bot's identity and status.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "VLOP Telegram Bot",
		"version": config.Version,
		"status":  "running",
		"message": "🎉 VLOP Bot running fine on version " + config.Version + " 🎉",
		"mode":    h.mode,
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "VLOP Bot running fine on version " + config.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
		"mode":      h.mode,
	})
}

// Webhook receives one Telegram update and feeds it into the bot.
func (h *Handler) Webhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Error("webhook processing error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	h.bot.HandleUpdate(update)
	c.Status(http.StatusOK)
}

// WebhookStatus confirms the webhook endpoint is reachable.
func (h *Handler) WebhookStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "webhook endpoint active",
		"message":   "VLOP Bot webhook is ready to receive updates",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// WebhookInfo proxies Telegram's view of the registered webhook.
func (h *Handler) WebhookInfo(c *gin.Context) {
	info, err := h.bot.WebhookInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// ResetWebhook deletes and re-registers the webhook.
func (h *Handler) ResetWebhook(c *gin.Context) {
	info, err := h.bot.ResetWebhook()
	if err != nil {
		h.logger.Error("failed to reset webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Webhook reset successfully",
		"webhookInfo": info,
	})
}
