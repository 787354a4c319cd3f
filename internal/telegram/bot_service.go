// Package telegram handles the integration with the Telegram Bot API.
// It receives updates, routes commands, search input, greetings and inline
// button callbacks, and drives the paginated rendering of content results.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vlopbot/internal/cache"
	"vlopbot/internal/config"
	"vlopbot/internal/models"
	"vlopbot/internal/pagination"
	"vlopbot/internal/presenter"
	"vlopbot/internal/responses"
	"vlopbot/internal/session"
)

// ContentProvider is the lookup surface the router needs.
type ContentProvider interface {
	Search(ctx context.Context, query string) (models.ResultSet, error)
	Trending(ctx context.Context) (models.ResultSet, error)
	Popular(ctx context.Context) (models.ResultSet, error)
	Details(ctx context.Context, id int64, kind models.MediaKind) (*models.ContentDetail, error)
}

// Sender is the narrow transport surface used for outbound calls, satisfied
// by *tgbotapi.BotAPI and mockable in tests.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const noMatchesText = "Sorry, I couldn't find any matches. Please try another search."

// greetingWords is the fixed lexicon matched (case-insensitively, as a
// substring) against free text.
var greetingWords = []string{
	"hi", "hello", "hey", "howdy", "hola", "greetings",
	"how are you", "good morning", "good afternoon", "good evening",
}

// BotService receives Telegram updates and routes them. Events for one chat
// are serialized through a per-chat dispatch queue; distinct chats run in
// parallel.
type BotService struct {
	bot        *tgbotapi.BotAPI
	api        Sender
	provider   ContentProvider
	responses  *responses.Library
	presenter  *presenter.Presenter
	sessions   *session.Store
	cache      *cache.Store
	navigator  *pagination.Navigator
	dispatcher *dispatcher
	logger     *slog.Logger

	baseURL    string
	webAppLink string
	webhookURL string

	randMu sync.Mutex
	rand   *rand.Rand
	now    func() time.Time
}

// NewBotService authorizes against the Bot API and wires the router.
func NewBotService(cfg config.Config, provider ContentProvider, lib *responses.Library, logger *slog.Logger) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	bot.Debug = false
	logger.Info("authorized on Telegram", "account", bot.Self.UserName)

	s, err := newService(bot, provider, lib, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.bot = bot

	// Registered here so the command list exists in webhook mode too, where
	// Run is never called.
	s.registerCommands()
	return s, nil
}

// newService wires everything except the live Bot API connection.
func newService(api Sender, provider ContentProvider, lib *responses.Library, cfg config.Config, logger *slog.Logger) (*BotService, error) {
	sessions, err := session.NewStore(config.MaxTrackedChats)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	return &BotService{
		api:       api,
		provider:  provider,
		responses: lib,
		presenter: &presenter.Presenter{
			Responses:         lib,
			BaseURL:           cfg.BaseURL,
			PlaceholderPoster: cfg.PlaceholderPoster,
			Logger:            logger,
		},
		sessions:   sessions,
		cache:      cache.New(config.CacheEntriesPerChat),
		navigator:  &pagination.Navigator{Fetcher: provider, Logger: logger},
		dispatcher: newDispatcher(logger),
		logger:     logger,
		baseURL:    cfg.BaseURL,
		webAppLink: cfg.WebAppLink,
		webhookURL: cfg.WebhookURL,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}, nil
}

// Run consumes long-poll updates until Stop.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.bot.GetUpdatesChan(u)

	s.logger.Info("bot is ready to receive messages")
	for update := range updates {
		s.HandleUpdate(update)
	}
}

// Stop shuts down the long-poll loop.
func (s *BotService) Stop() {
	s.bot.StopReceivingUpdates()
}

// HandleUpdate enqueues one update on its chat's dispatch queue. It is the
// entry point for both polling and the webhook endpoint.
func (s *BotService) HandleUpdate(update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}
	s.dispatcher.dispatch(chatID, func() { s.processUpdate(update) })
}

func (s *BotService) processUpdate(update tgbotapi.Update) {
	ctx := context.Background()
	switch {
	case update.Message != nil && update.Message.Text != "":
		s.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		s.handleCallback(ctx, update.CallbackQuery)
	}
}

func (s *BotService) registerCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot"},
		tgbotapi.BotCommand{Command: "menu", Description: "Show main menu"},
		tgbotapi.BotCommand{Command: "search", Description: "Search for movies and shows"},
		tgbotapi.BotCommand{Command: "trending", Description: "Show trending content"},
		tgbotapi.BotCommand{Command: "popular", Description: "Show popular content"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help information"},
	)
	if _, err := s.api.Request(cmds); err != nil {
		s.logger.Error("failed to register command list", "error", err)
	}
}

// handleMessage routes commands, menu-button literals and free text.
func (s *BotService) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := firstName(msg)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			s.handleStart(chatID, name)
		case "menu":
			s.handleMenu(chatID, name)
		case "search":
			s.handleSearchPrompt(chatID)
		case "trending":
			s.handleTrending(ctx, chatID)
		case "popular":
			s.handlePopular(ctx, chatID)
		case "help":
			s.handleHelp(chatID)
		default:
			s.logger.Info("ignoring unknown command", "chat_id", chatID, "command", msg.Command())
		}
		return
	}

	switch msg.Text {
	case responses.ButtonSearch:
		s.handleSearchPrompt(chatID)
		return
	case responses.ButtonTrending:
		s.handleTrending(ctx, chatID)
		return
	case responses.ButtonPopular:
		s.handlePopular(ctx, chatID)
		return
	case responses.ButtonHelp:
		s.handleHelp(chatID)
		return
	}

	if st, ok := s.sessions.Get(chatID); ok && st.Step == session.StepAwaitingSearch {
		s.handleSearchQuery(ctx, chatID, msg.Text)
		return
	}

	if isGreeting(msg.Text) {
		s.handleGreeting(chatID, name)
		return
	}

	s.logger.Info("unknown message handled", "chat_id", chatID)
	s.sendWithMenu(chatID, s.responses.UnknownMessage())
}

func (s *BotService) handleStart(chatID int64, name string) {
	s.logger.Info("user started bot", "chat_id", chatID, "user", name)
	s.sessions.Set(chatID, session.State{Step: session.StepNone})
	s.sendWithMenu(chatID, s.responses.WelcomeMessage(true))
}

func (s *BotService) handleMenu(chatID int64, name string) {
	s.sendWithMenu(chatID, s.responses.MenuText("main_menu", name))
}

func (s *BotService) handleSearchPrompt(chatID int64) {
	s.logger.Info("user initiated search", "chat_id", chatID)
	s.sendText(chatID, s.responses.PromptMessage("search_prompt"))
	s.sessions.Set(chatID, session.State{Step: session.StepAwaitingSearch})
}

func (s *BotService) handleHelp(chatID int64) {
	s.sendWithMenu(chatID, s.responses.HelpMessage())
}

func (s *BotService) handleTrending(ctx context.Context, chatID int64) {
	s.logger.Info("user requested trending content", "chat_id", chatID)
	s.sendText(chatID, s.responses.LoadingMessage("fetching_trending"))

	trending, err := s.provider.Trending(ctx)
	if err != nil {
		s.logger.Error("error getting trending content", "chat_id", chatID, "error", err)
		s.sendText(chatID, s.responses.ErrorMessage("api_error"))
		return
	}
	s.renderResults(ctx, chatID, trending, 0)
}

func (s *BotService) handlePopular(ctx context.Context, chatID int64) {
	s.logger.Info("user requested popular content", "chat_id", chatID)
	s.sendText(chatID, s.responses.LoadingMessage("fetching_popular"))

	popular, err := s.provider.Popular(ctx)
	if err != nil {
		s.logger.Error("error getting popular content", "chat_id", chatID, "error", err)
		s.sendText(chatID, s.responses.ErrorMessage("api_error"))
		return
	}
	s.renderResults(ctx, chatID, popular, 0)
}

func (s *BotService) handleSearchQuery(ctx context.Context, chatID int64, query string) {
	s.logger.Info("processing search query", "chat_id", chatID, "query", query)
	s.sendText(chatID, s.responses.LoadingMessage("searching"))

	results, err := s.provider.Search(ctx, query)
	if err != nil {
		s.logger.Error("search error", "chat_id", chatID, "query", query, "error", err)
		s.sendText(chatID, s.responses.ErrorMessage("search"))
		return
	}
	if len(results) == 0 {
		s.logger.Warn("no search results", "chat_id", chatID, "query", query)
		s.sendText(chatID, s.responses.ErrorMessage("no_results"))
		return
	}
	s.renderResults(ctx, chatID, results, 0)
}

func (s *BotService) handleGreeting(chatID int64, name string) {
	tod := timeOfDay(s.now())
	s.randMu.Lock()
	text := s.responses.Greeting(tod, name, s.rand)
	s.randMu.Unlock()
	s.sendWithMenu(chatID, text)
}

// renderResults deletes the previous result message, fetches full detail for
// the selected item, caches the set and sends the photo card. The session
// step resets to none as part of the overwrite.
func (s *BotService) renderResults(ctx context.Context, chatID int64, results models.ResultSet, index int) {
	if len(results) == 0 {
		s.sendText(chatID, noMatchesText)
		return
	}

	if prevID, ok := s.sessions.ActiveMessage(chatID); ok {
		if _, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, prevID)); err != nil {
			s.logger.Warn("error deleting previous message", "chat_id", chatID, "error", err)
		}
	}

	item := results[index]
	detail, err := s.provider.Details(ctx, item.ID, item.Kind)
	if err != nil {
		s.logger.Error("error fetching content details", "chat_id", chatID, "media_id", item.MediaID(), "error", err)
		s.sendText(chatID, s.responses.ErrorMessage("display"))
		return
	}

	cacheKey := s.cache.Put(chatID, results)

	caption, markdown := s.presenter.Caption(detail, index, len(results))
	keyboard := s.presenter.Keyboard(detail.MediaID(), index, len(results), cacheKey)

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(s.presenter.PosterURL(detail)))
	photo.Caption = caption
	photo.ReplyMarkup = keyboard
	if markdown {
		photo.ParseMode = tgbotapi.ModeMarkdownV2
	}

	sent, err := s.api.Send(photo)
	if err != nil {
		// One plain-text fallback attempt, then give up silently.
		s.logger.Warn("rich send failed, retrying as plain text", "chat_id", chatID, "error", err)
		plain := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(s.presenter.PosterURL(detail)))
		plain.Caption = s.presenter.PlainCaption(detail, index, len(results))
		plain.ReplyMarkup = keyboard
		sent, err = s.api.Send(plain)
		if err != nil {
			s.logger.Error("error sending search result", "chat_id", chatID, "error", err)
			return
		}
	}

	s.sessions.SetActiveMessage(chatID, sent.MessageID)
	s.sessions.Set(chatID, session.State{
		Step:     session.StepNone,
		Results:  results,
		Index:    index,
		CacheKey: cacheKey,
	})
	s.logger.Info("result sent", "chat_id", chatID, "title", detail.Title, "message_id", sent.MessageID)
}

// handleCallback routes inline button taps: watch deep links and prev/next
// navigation.
func (s *BotService) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID

	switch {
	case strings.HasPrefix(q.Data, "watch_"):
		s.handleWatch(chatID, q)
	case strings.HasPrefix(q.Data, "prev_"), strings.HasPrefix(q.Data, "next_"):
		s.handleNavigation(ctx, chatID, q)
	default:
		s.answerCallback(q.ID, "")
	}
}

func (s *BotService) handleWatch(chatID int64, q *tgbotapi.CallbackQuery) {
	mediaID := strings.TrimPrefix(q.Data, "watch_")
	watchURL := s.baseURL + "/watch/" + mediaID
	s.logger.Info("watch request", "chat_id", chatID, "media_id", mediaID)

	callback := tgbotapi.NewCallback(q.ID, "")
	callback.URL = s.webAppLink + "?startapp=" + url.QueryEscape(watchURL)
	if _, err := s.api.Request(callback); err != nil {
		s.logger.Error("failed to answer watch callback", "chat_id", chatID, "error", err)
	}
}

func (s *BotService) handleNavigation(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery) {
	action, index, cacheKey, err := parseNavToken(q.Data)
	if err != nil {
		s.logger.Error("malformed navigation token", "chat_id", chatID, "data", q.Data, "error", err)
		s.alertCallback(q.ID, s.responses.ErrorMessage("cache_miss"))
		return
	}
	s.logger.Info("navigation request", "chat_id", chatID, "action", action, "index", index, "cache_key", cacheKey)

	results, err := s.cache.Get(cacheKey)
	if err != nil {
		s.logger.Warn("navigation cache miss", "chat_id", chatID, "cache_key", cacheKey)
		s.alertCallback(q.ID, s.responses.ErrorMessage("cache_miss"))
		return
	}

	var newIndex int
	if action == "next" {
		newIndex = pagination.Advance(index, len(results))
	} else {
		newIndex = pagination.Retreat(index, len(results))
	}

	fresh, newIndex, err := s.navigator.Refresh(ctx, results, newIndex)
	if err != nil {
		if !errors.Is(err, pagination.ErrNoValidResults) {
			s.logger.Error("navigation error", "chat_id", chatID, "error", err)
		}
		s.alertCallback(q.ID, s.responses.ErrorMessage("cache_miss"))
		return
	}

	s.renderResults(ctx, chatID, fresh, newIndex)
	s.answerCallback(q.ID, "")
	s.logger.Info("navigation completed", "chat_id", chatID, "new_index", newIndex)
}

func (s *BotService) answerCallback(id, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		s.logger.Error("failed to answer callback", "error", err)
	}
}

func (s *BotService) alertCallback(id, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		s.logger.Error("failed to answer callback with alert", "error", err)
	}
}

// sendText sends a plain message without a keyboard.
func (s *BotService) sendText(chatID int64, text string) {
	if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendWithMenu sends a plain message with the persistent main menu keyboard.
func (s *BotService) sendWithMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = s.responses.MainMenuKeyboard()
	if _, err := s.api.Send(msg); err != nil {
		s.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// parseNavToken decodes "<action>_<index>_<cacheKey>". The cache key may
// itself contain underscores, so everything after the second underscore
// belongs to it.
func parseNavToken(data string) (action string, index int, cacheKey string, err error) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf("expected 3 token parts, got %d", len(parts))
	}
	index, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", fmt.Errorf("bad index %q: %w", parts[1], err)
	}
	return parts[0], index, parts[2], nil
}

// isGreeting reports whether text contains any word of the greeting lexicon.
func isGreeting(text string) bool {
	lower := strings.ToLower(text)
	for _, g := range greetingWords {
		if strings.Contains(lower, g) {
			return true
		}
	}
	return false
}

// timeOfDay buckets the local clock for greeting selection.
func timeOfDay(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func firstName(msg *tgbotapi.Message) string {
	if msg.From != nil && msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	return "there"
}
