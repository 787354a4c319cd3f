// Package session tracks per-chat dialogue state and the last rendered
// result message. Both maps are bounded LRUs so memory stays capped under
// sustained distinct-chat load.
package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"vlopbot/internal/models"
)

// Step is the dialogue position of a chat.
type Step string

const (
	StepNone           Step = ""
	StepAwaitingSearch Step = "awaiting_search"
)

// State mirrors the last rendered page for a chat. Writers replace the whole
// value; there is no partial merge at this layer.
type State struct {
	Step     Step
	Results  models.ResultSet
	Index    int
	CacheKey string
}

// Store holds session state and active message IDs keyed by chat.
type Store struct {
	sessions *lru.Cache[int64, State]
	active   *lru.Cache[int64, int]
}

// NewStore creates a Store tracking at most maxChats chats. Chats evicted
// from the session map simply restart from the menu on their next message.
func NewStore(maxChats int) (*Store, error) {
	sessions, err := lru.New[int64, State](maxChats)
	if err != nil {
		return nil, err
	}
	active, err := lru.New[int64, int](maxChats)
	if err != nil {
		return nil, err
	}
	return &Store{sessions: sessions, active: active}, nil
}

// Get returns the session state for a chat.
func (s *Store) Get(chatID int64) (State, bool) {
	return s.sessions.Get(chatID)
}

// Set overwrites the session state for a chat.
func (s *Store) Set(chatID int64, state State) {
	s.sessions.Add(chatID, state)
}

// ActiveMessage returns the ID of the last rendered result message.
func (s *Store) ActiveMessage(chatID int64) (int, bool) {
	return s.active.Get(chatID)
}

// SetActiveMessage records the last rendered result message for a chat.
func (s *Store) SetActiveMessage(chatID int64, messageID int) {
	s.active.Add(chatID, messageID)
}
