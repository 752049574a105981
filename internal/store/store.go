// Package store persists conversation history and the most recently
// generated HTML document. Both live in a local BadgerDB and are mirrored
// in memory: persistence failures are logged and degrade to the in-memory
// copy, they never interrupt the conversation flow.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"webcanvas/internal/logging"
	"webcanvas/internal/models"
)

const (
	conversationKey = "metadata:conversation"
	lastHTMLKey     = "artifact:last_html"

	seedMessageID = "1"
	// The fixed welcome message the conversation always resets to.
	seedMessageText = "היי אני קוד-כל המתכנת האישי שלך ברשויות המקומיות"

	defaultConversationTitle = "playground"
)

type Store struct {
	db *badger.DB // nil means in-memory only

	mu           sync.RWMutex
	conversation models.Conversation
	messages     []models.Message
	lastHTML     string
}

// Open opens (or creates) the store at dbPath and loads persisted state.
// The conversation is seeded with the welcome message when no history
// exists.
func Open(dbPath, model string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	s := &Store{db: db}
	s.load(model)
	return s, nil
}

// NewInMemory creates a store with no durable backing. Used when the
// database cannot be opened; the conversation still works for the session.
func NewInMemory(model string) *Store {
	s := &Store{}
	s.load(model)
	return s
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Conversation returns the conversation metadata.
func (s *Store) Conversation() models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversation
}

// Messages returns a copy of the full ordered message list.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// RecentMessages returns a copy of the last n messages in order.
func (s *Store) RecentMessages(n int) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.messages) - n
	if start < 0 {
		start = 0
	}
	result := make([]models.Message, len(s.messages)-start)
	copy(result, s.messages[start:])
	return result
}

// Append adds a message to the conversation and persists it. Persistence
// failures are logged; the in-memory list is updated regardless.
func (s *Store) Append(msg *models.Message) {
	if msg == nil {
		return
	}

	s.mu.Lock()
	stored := *msg
	stored.ConversationID = s.conversation.ID
	s.messages = append(s.messages, stored)
	s.mu.Unlock()

	if err := s.persistMessage(stored); err != nil {
		logging.Error("failed to persist message %s: %v", stored.ID, err)
	}
}

// Clear resets the conversation to exactly the seed message. The
// last-generated artifact is left untouched: a user clearing the chat keeps
// their working code.
func (s *Store) Clear() {
	s.mu.Lock()
	convID := s.conversation.ID
	seed := seedMessage(convID)
	s.messages = []models.Message{seed}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	prefix := []byte(messagePrefix(convID))
	if err := s.db.DropPrefix(prefix); err != nil {
		logging.Error("failed to clear persisted history: %v", err)
	}
	if err := s.persistMessage(seed); err != nil {
		logging.Error("failed to persist seed message: %v", err)
	}
}

// LastHTML returns the most recently generated HTML document, or "".
func (s *Store) LastHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHTML
}

// SaveLastHTML stores the most recently generated HTML document. The
// in-memory slot is always updated; the returned error reports persistence
// failure only.
func (s *Store) SaveLastHTML(code string) error {
	s.mu.Lock()
	s.lastHTML = code
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lastHTMLKey), []byte(code))
	})
	if err != nil {
		return fmt.Errorf("failed to persist generated code: %w", err)
	}
	return nil
}

// load restores the conversation, history and last artifact from the
// database. Any read failure is logged and replaced with defaults.
func (s *Store) load(model string) {
	s.conversation = s.loadConversation(model)
	s.messages = s.loadMessages(s.conversation.ID)
	s.lastHTML = s.loadLastHTML()

	if len(s.messages) == 0 {
		seed := seedMessage(s.conversation.ID)
		s.messages = []models.Message{seed}
		if err := s.persistMessage(seed); err != nil {
			logging.Error("failed to persist seed message: %v", err)
		}
	}
}

func (s *Store) loadConversation(model string) models.Conversation {
	if s.db != nil {
		var conv models.Conversation
		err := s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(conversationKey))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &conv)
			})
		})
		if err == nil {
			return conv
		}
		if err != badger.ErrKeyNotFound {
			logging.Error("failed to load conversation metadata: %v", err)
		}
	}

	conv := *models.NewConversation(defaultConversationTitle, model)
	if s.db != nil {
		data, err := json.Marshal(conv)
		if err == nil {
			err = s.db.Update(func(txn *badger.Txn) error {
				return txn.Set([]byte(conversationKey), data)
			})
		}
		if err != nil {
			logging.Error("failed to persist conversation metadata: %v", err)
		}
	}
	return conv
}

func (s *Store) loadMessages(convID string) []models.Message {
	if s.db == nil {
		return nil
	}

	var messages []models.Message
	prefix := []byte(messagePrefix(convID))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var msg models.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("failed to load chat history: %v", err)
		return nil
	}

	// Sort by timestamp
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages
}

func (s *Store) loadLastHTML() string {
	if s.db == nil {
		return ""
	}

	var code string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastHTMLKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			code = string(val)
			return nil
		})
	})
	if err != nil && err != badger.ErrKeyNotFound {
		logging.Error("failed to load generated code: %v", err)
	}
	return code
}

func (s *Store) persistMessage(msg models.Message) error {
	if s.db == nil {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := fmt.Sprintf("%s%s", messagePrefix(msg.ConversationID), msg.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func messagePrefix(convID string) string {
	return fmt.Sprintf("conv:%s:msg:", convID)
}

func seedMessage(convID string) models.Message {
	msg := models.NewMessage(convID, models.RoleAssistant, seedMessageText)
	msg.ID = seedMessageID
	return *msg
}
