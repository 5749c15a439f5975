package repository

import (
	"path/filepath"
	"time"

	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"go.uber.org/zap"
)

// MaxConversationMessages is the number of most recent messages kept per user.
const MaxConversationMessages = 100

// ConversationFile is the conversation document name inside the data directory.
const ConversationFile = "ai_chats.json"

// ConversationRepository keeps each user's Chef AI conversation log.
// Storage failures are logged and never surface to the caller.
type ConversationRepository struct {
	store *jsonStore[[]models.ChatMessage]
	now   func() time.Time
}

// NewConversationRepository creates a ConversationRepository backed by
// ai_chats.json in dataDir.
func NewConversationRepository(dataDir string) *ConversationRepository {
	return &ConversationRepository{
		store: newJSONStore[[]models.ChatMessage](filepath.Join(dataDir, ConversationFile)),
		now:   time.Now,
	}
}

// Append adds a message to the user's log, evicting the oldest entries past
// MaxConversationMessages. It reports whether the message was recorded; an
// empty username records nothing.
func (r *ConversationRepository) Append(username string, role models.ChatRole, text string) bool {
	if username == "" {
		return false
	}

	msg := models.ChatMessage{Role: role, Text: text, Timestamp: r.now()}
	err := r.store.update(func(doc map[string][]models.ChatMessage) bool {
		entries := append(doc[username], msg)
		if len(entries) > MaxConversationMessages {
			entries = append([]models.ChatMessage(nil), entries[len(entries)-MaxConversationMessages:]...)
		}
		doc[username] = entries
		return true
	})
	if err != nil {
		logger.ForUser(username).Error("failed to append chat message", zap.String("role", string(role)), zap.Error(err))
		return false
	}
	return true
}

// History returns the user's log in chronological order. It is never nil.
func (r *ConversationRepository) History(username string) []models.ChatMessage {
	history := []models.ChatMessage{}
	if username == "" {
		return history
	}

	err := r.store.view(func(doc map[string][]models.ChatMessage) {
		history = append(history, doc[username]...)
	})
	if err != nil {
		logger.ForUser(username).Error("failed to load chat history", zap.Error(err))
	}
	return history
}

// Clear empties the user's log. It returns false when there was nothing to
// clear, so a second Clear in a row reports false.
func (r *ConversationRepository) Clear(username string) bool {
	cleared := false
	err := r.store.update(func(doc map[string][]models.ChatMessage) bool {
		if len(doc[username]) == 0 {
			return false
		}
		doc[username] = []models.ChatMessage{}
		cleared = true
		return true
	})
	if err != nil {
		logger.ForUser(username).Error("failed to clear chat history", zap.Error(err))
		return false
	}
	return cleared
}
