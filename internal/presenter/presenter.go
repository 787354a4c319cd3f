// Package presenter renders one content detail into a display-safe caption
// and builds the inline keyboards for watching and navigating.
package presenter

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vlopbot/internal/config"
	"vlopbot/internal/markup"
	"vlopbot/internal/models"
	"vlopbot/internal/responses"
)

// Presenter renders result cards. All fields are required.
type Presenter struct {
	Responses         *responses.Library
	BaseURL           string
	PlaceholderPoster string
	Logger            *slog.Logger
}

// captionData carries pre-escaped fields into the caption template.
type captionData struct {
	Title       string
	Overview    string
	ReleaseDate string
	Genres      string
	Rating      string
	Index       string
	Total       string
}

// Caption renders the MarkdownV2 caption for a result, with the 1-based
// "index of total" footer. When the template cannot be parsed or executed it
// degrades to an unescaped plain-text caption instead of failing the render;
// the second return value reports whether the caption is MarkdownV2.
func (p *Presenter) Caption(detail *models.ContentDetail, index, total int) (string, bool) {
	data := captionData{
		Title:       markup.EscapeV2(detail.Title),
		Overview:    markup.EscapeV2(overviewOrDefault(detail.Overview)),
		ReleaseDate: markup.EscapeV2(dateOrDefault(detail.ReleaseDate)),
		Genres:      markup.EscapeV2(genresOrDefault(detail.Genres)),
		Rating:      markup.EscapeV2(ratingOrDefault(detail.Rating)),
		Index:       fmt.Sprintf("%d", index+1),
		Total:       fmt.Sprintf("%d", total),
	}

	tmpl, err := template.New("result_card").Parse(p.Responses.ContentTemplate("result_card"))
	if err == nil {
		var buf bytes.Buffer
		if err = tmpl.Execute(&buf, data); err == nil {
			return buf.String(), true
		}
	}

	p.Logger.Error("caption render failed, falling back to plain text", "error", err)
	return p.PlainCaption(detail, index, total), false
}

// PlainCaption is the unformatted caption used when MarkdownV2 rendering or
// the rich send attempt fails.
func (p *Presenter) PlainCaption(detail *models.ContentDetail, index, total int) string {
	return fmt.Sprintf("🎬 %s\n\n📝 Overview:\n%s\n\n📅 Release Date: %s\n🏷️ Genres: %s\n⭐ Rating: %s/10\n\n🔍 Result %d of %d",
		detail.Title,
		overviewOrDefault(detail.Overview),
		dateOrDefault(detail.ReleaseDate),
		genresOrDefault(detail.Genres),
		ratingOrDefault(detail.Rating),
		index+1, total)
}

// Keyboard builds the action rows for a rendered result. The navigation row
// is omitted entirely for single-item sets; its labels show the 1-based
// position the button leads to, while the callback data carries the current
// index and the cache key.
func (p *Presenter) Keyboard(mediaID string, index, total int, cacheKey string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Watch in Telegram", "watch_"+mediaID),
			tgbotapi.NewInlineKeyboardButtonURL("🌐 Watch on Web", p.BaseURL+"/watch/"+mediaID),
		),
	}

	if total > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("⬅️ Previous (%d/%d)", prevDisplay(index, total), total),
				fmt.Sprintf("prev_%d_%s", index, cacheKey),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("➡️ Next (%d/%d)", nextDisplay(index, total), total),
				fmt.Sprintf("next_%d_%s", index, cacheKey),
			),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// PosterURL resolves the image to render with the caption, falling back to
// the configured placeholder when the title has no poster.
func (p *Presenter) PosterURL(detail *models.ContentDetail) string {
	if detail.PosterPath == "" {
		return p.PlaceholderPoster
	}
	return config.ImageBaseURL + detail.PosterPath
}

// prevDisplay is the 1-based position the previous button leads to.
func prevDisplay(index, total int) int {
	if index == 0 {
		return total
	}
	return index
}

// nextDisplay is the 1-based position the next button leads to.
func nextDisplay(index, total int) int {
	if index+2 > total {
		return 1
	}
	return index + 2
}

func overviewOrDefault(overview string) string {
	if overview == "" {
		return "No overview available"
	}
	return overview
}

func dateOrDefault(date string) string {
	if date == "" {
		return "TBA"
	}
	return date
}

func genresOrDefault(genres []string) string {
	if len(genres) == 0 {
		return "N/A"
	}
	return strings.Join(genres, ", ")
}

func ratingOrDefault(rating float64) string {
	if rating <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", rating)
}
