package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups an ordered message sequence under a stable identity.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewConversation(title, model string) *Conversation {
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		Model:     model,
		CreatedAt: time.Now(),
	}
}
