package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SetupWebhook deletes any existing webhook, registers the configured one
// and verifies Telegram accepted it. Used in production mode instead of
// long polling.
func (s *BotService) SetupWebhook() error {
	if _, err := s.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete existing webhook: %w", err)
	}
	s.logger.Info("existing webhook deleted")

	// Telegram occasionally rejects an immediate re-registration.
	time.Sleep(time.Second)

	wh, err := tgbotapi.NewWebhook(s.webhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := s.bot.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	s.logger.Info("webhook set", "url", s.webhookURL)

	info, err := s.bot.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("failed to fetch webhook info: %w", err)
	}
	if info.URL != s.webhookURL {
		s.logger.Error("webhook URL mismatch", "expected", s.webhookURL, "actual", info.URL)
	}
	return nil
}

// WebhookInfo returns the current webhook state from Telegram.
func (s *BotService) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	return s.bot.GetWebhookInfo()
}

// ResetWebhook re-runs the delete/set sequence and reports the result.
func (s *BotService) ResetWebhook() (tgbotapi.WebhookInfo, error) {
	if err := s.SetupWebhook(); err != nil {
		return tgbotapi.WebhookInfo{}, err
	}
	return s.bot.GetWebhookInfo()
}
