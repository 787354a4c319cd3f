// Package cache stores result sets behind opaque keys so navigation
// callbacks can recover them later. Retention is count-based FIFO per chat.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"vlopbot/internal/models"
)

// ErrCacheMiss signals a navigation token referencing an evicted or unknown
// entry. Consumers treat it as "please search again", never as fatal.
var ErrCacheMiss = errors.New("results not found in cache")

// Store is a process-wide result cache. Safe for concurrent use; eviction
// for one chat never touches another chat's entries.
type Store struct {
	mu           sync.Mutex
	entries      map[string]models.ResultSet
	order        map[int64][]string
	perChatLimit int
	now          func() time.Time
}

// New creates a Store retaining at most perChatLimit entries per chat.
func New(perChatLimit int) *Store {
	return &Store{
		entries:      make(map[string]models.ResultSet),
		order:        make(map[int64][]string),
		perChatLimit: perChatLimit,
		now:          time.Now,
	}
}

// Put stores a result set for the chat and returns its key. The key keeps
// the "<chatID>_<epochMillis>" shape and appends a random fragment so two
// renders in the same millisecond cannot collide. Inserting past the
// per-chat limit evicts the oldest entries first.
func (s *Store) Put(chatID int64, results models.ResultSet) string {
	key := fmt.Sprintf("%d_%d_%s", chatID, s.now().UnixMilli(), uuid.NewString()[:8])

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = results
	keys := append(s.order[chatID], key)
	if excess := len(keys) - s.perChatLimit; excess > 0 {
		for _, old := range keys[:excess] {
			delete(s.entries, old)
		}
		keys = keys[excess:]
	}
	s.order[chatID] = keys
	return key
}

// Get returns the result set for a key, or ErrCacheMiss.
func (s *Store) Get(key string) (models.ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, ok := s.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return results, nil
}
