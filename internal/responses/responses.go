// Package responses provides the canned texts, menus and templates of the
// bot. It loads them from JSON files and falls back to built-in defaults
// when a file is missing or corrupt.
package responses

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Main menu button labels. These literals are part of the external contract:
// the dialogue router matches incoming message text against them.
const (
	ButtonSearch   = "🎬 Search Movies/Shows"
	ButtonTrending = "🔥 Trending"
	ButtonPopular  = "⭐ Popular"
	ButtonHelp     = "❓ Help"
)

type mainResponses struct {
	Greetings map[string][]string `json:"greetings"`
	Welcome   map[string]string   `json:"welcome"`
	Help      struct {
		MainHelp string   `json:"main_help"`
		Commands []string `json:"commands"`
	} `json:"help"`
	Errors         map[string]string `json:"errors"`
	Loading        map[string]string `json:"loading"`
	Prompts        map[string]string `json:"prompts"`
	UnknownMessage string            `json:"unknown_message"`
}

type buttonResponses struct {
	Buttons map[string][]struct {
		Text string `json:"text"`
	} `json:"buttons"`
	MenuTexts map[string]string `json:"menu_texts"`
}

type contentResponses struct {
	ContentTemplates map[string]string `json:"content_templates"`
}

// Library holds all loaded response texts.
type Library struct {
	mu      sync.RWMutex
	main    mainResponses
	buttons buttonResponses
	content contentResponses
}

// NewLibrary loads main.json, buttons.json and content.json from dir. Any
// load failure is reported back but leaves the library usable via defaults.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{}
	l.loadDefaults()

	var errs []string
	if err := readJSON(filepath.Join(dir, "main.json"), &l.main); err != nil {
		errs = append(errs, err.Error())
	}
	if err := readJSON(filepath.Join(dir, "buttons.json"), &l.buttons); err != nil {
		errs = append(errs, err.Error())
	}
	if err := readJSON(filepath.Join(dir, "content.json"), &l.content); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return l, fmt.Errorf("response files fell back to defaults: %s", strings.Join(errs, "; "))
	}
	return l, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Greeting picks one of the greeting variants for the time of day, filling
// in the user's name. timeOfDay is "morning", "afternoon" or "evening".
func (l *Library) Greeting(timeOfDay, name string, r *rand.Rand) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	variants := l.main.Greetings[timeOfDay]
	if len(variants) == 0 {
		variants = l.main.Greetings["general"]
	}
	if len(variants) == 0 {
		return "Hello! 👋"
	}
	text := variants[r.Intn(len(variants))]
	text = strings.ReplaceAll(text, "{greeting}", timeOfDay)
	return strings.ReplaceAll(text, "{name}", name)
}

// WelcomeMessage returns the welcome text for new or returning users.
func (l *Library) WelcomeMessage(isNewUser bool) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	key := "returning_user"
	if isNewUser {
		key = "new_user"
	}
	if text, ok := l.main.Welcome[key]; ok {
		return text
	}
	return "Welcome to VLOP! 🎉"
}

// HelpMessage returns the help text with the command list appended.
func (l *Library) HelpMessage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.main.Help.MainHelp + "\n\n" + strings.Join(l.main.Help.Commands, "\n")
}

// ErrorMessage returns the user-facing text for an error type.
func (l *Library) ErrorMessage(errorType string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if text, ok := l.main.Errors[errorType]; ok {
		return text
	}
	return "Sorry, something went wrong. Please try again later."
}

// LoadingMessage returns the interstitial text shown before a fetch.
func (l *Library) LoadingMessage(loadingType string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if text, ok := l.main.Loading[loadingType]; ok {
		return text
	}
	return "⚙️ Processing..."
}

// PromptMessage returns the text asking the user for input.
func (l *Library) PromptMessage(promptType string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if text, ok := l.main.Prompts[promptType]; ok {
		return text
	}
	return "What are you looking for?"
}

// UnknownMessage returns the fallback nudge for unrecognized free text.
func (l *Library) UnknownMessage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.main.UnknownMessage != "" {
		return l.main.UnknownMessage
	}
	return "I'm here to help you find great content! Use the menu below."
}

// MenuText returns a menu caption with the user's name filled in.
func (l *Library) MenuText(menuType, name string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	text, ok := l.buttons.MenuTexts[menuType]
	if !ok {
		text = "What would you like to do?"
	}
	return strings.ReplaceAll(text, "{name}", name)
}

// ContentTemplate returns the caption template for a content card.
func (l *Library) ContentTemplate(templateType string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.content.ContentTemplates[templateType]
}

// MainMenuKeyboard builds the persistent reply keyboard, two buttons per row.
func (l *Library) MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	l.mu.RLock()
	defer l.mu.RUnlock()

	buttons := l.buttons.Buttons["main_menu"]
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(buttons[i].Text)}
		if i+1 < len(buttons) {
			row = append(row, tgbotapi.NewKeyboardButton(buttons[i+1].Text))
		}
		rows = append(rows, row)
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// loadDefaults fills the library with the built-in texts so the bot works
// even without response files on disk.
func (l *Library) loadDefaults() {
	l.main = mainResponses{
		Greetings: map[string][]string{
			"morning": {
				"Good morning, {name}! 👋 How can I help you today?",
				"Hey {name}! Looking for something to watch this morning?",
				"Hello {name}! Need help finding a movie or show?",
			},
			"afternoon": {
				"Good afternoon, {name}! 👋 How can I help you today?",
				"Hey {name}! Looking for something to watch?",
				"Hello {name}! Need help finding a movie or show?",
			},
			"evening": {
				"Good evening, {name}! 👋 How can I help you today?",
				"Hey {name}! Looking for something to watch tonight?",
				"Hello {name}! Need help finding a movie or show?",
			},
			"general": {"Hello! 👋 How can I help you today?"},
		},
		Welcome: map[string]string{
			"new_user":       "Welcome to VLOP! 🎉\n\nI can help you find movies and shows to watch. Use the menu below to get started.",
			"returning_user": "Welcome back! 🎬 What would you like to watch today?",
		},
		Errors: map[string]string{
			"api_error":  "Sorry, something went wrong. Please try again later.",
			"no_results": "No results found. Please try a different search term.",
			"cache_miss": "Sorry, something went wrong while navigating results. Please try a new search.",
			"display":    "Sorry, I couldn't display this result. Please try again.",
			"search":     "Sorry, something went wrong with the search. Please try again.",
		},
		Loading: map[string]string{
			"searching":         "🔍 Searching...",
			"fetching_trending": "🔥 Fetching trending content...",
			"fetching_popular":  "⭐ Fetching popular content...",
		},
		Prompts: map[string]string{
			"search_prompt": "What movie or show are you looking for? Just type the name:",
		},
		UnknownMessage: "I'm here to help you find great movies and shows to watch! 🎬\n\nYou can:\n- Search for content\n- See what's trending\n- Find popular shows\n\nJust use the menu below:",
	}
	l.main.Help.MainHelp = "Here's how I can help you:"
	l.main.Help.Commands = []string{
		"/start - Start the bot",
		"/menu - Show main menu",
		"/search - Search for movies and shows",
		"/trending - Show trending content",
		"/popular - Show popular content",
		"/help - Show help information",
	}

	l.buttons = buttonResponses{
		Buttons: map[string][]struct {
			Text string `json:"text"`
		}{
			"main_menu": {
				{Text: ButtonSearch},
				{Text: ButtonTrending},
				{Text: ButtonPopular},
				{Text: ButtonHelp},
			},
		},
		MenuTexts: map[string]string{
			"main_menu": "What would you like to do, {name}?",
		},
	}

	l.content = contentResponses{
		ContentTemplates: map[string]string{
			"result_card": "🎬 *{{.Title}}*\n\n📝 *Overview:*\n{{.Overview}}\n\n📅 *Release Date:* {{.ReleaseDate}}\n🏷️ *Genres:* {{.Genres}}\n⭐ *Rating:* {{.Rating}}/10\n\n🔍 Result {{.Index}} of {{.Total}}",
		},
	}
}
