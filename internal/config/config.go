// Package config holds environment-driven configuration and the tunable
// limits of the bot.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Version is reported by the status endpoints and startup logs.
const Version = "0.1.0"

const (
	// MaxResults caps every result set delivered to a chat.
	MaxResults = 5

	// CacheEntriesPerChat bounds retained result sets per chat (FIFO).
	CacheEntriesPerChat = 10

	// MaxTrackedChats bounds the session and active-message maps.
	MaxTrackedChats = 4096

	// ImageBaseURL prefixes poster paths returned by TMDB.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Config holds all runtime configuration values.
type Config struct {
	BotToken    string
	TMDBAPIKey  string
	TMDBBaseURL string

	// BaseURL is the public site used for "Watch on Web" links.
	BaseURL string
	// WebAppLink is the Telegram mini-app deep link used by "Watch in Telegram".
	WebAppLink string
	// PlaceholderPoster is rendered when a title has no poster.
	PlaceholderPoster string

	WebhookURL string
	Port       string
	Production bool

	LogFile  string
	LogLevel slog.Level

	ResponsesDir string
}

// Load reads configuration from environment variables. It fails when the
// bot token or the TMDB key is missing, everything else has a default.
func Load() (Config, error) {
	cfg := Config{
		BotToken:          os.Getenv("TELEGRAM_BOT_TOKEN"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:       getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		BaseURL:           getEnv("BASE_URL", "https://vlop.fun"),
		WebAppLink:        getEnv("WEBAPP_LINK", "https://t.me/vlopfunbot/app"),
		PlaceholderPoster: getEnv("PLACEHOLDER_POSTER_URL", "https://vlop.fun/placeholder.jpg"),
		WebhookURL:        getEnv("WEBHOOK_URL", "https://vlop.fun"),
		Port:              getEnv("PORT", "3000"),
		Production:        getEnv("APP_ENV", "development") == "production",
		LogFile:           getEnv("LOG_FILE", "logs/bot.log"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
		ResponsesDir:      getEnv("RESPONSES_DIR", "responses"),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required but not set")
	}
	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required but not set")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
