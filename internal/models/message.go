package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CodeBlock is a single fenced code unit extracted from assistant output.
// A block is immutable once created; applying it again produces a new
// render event, not a mutation.
type CodeBlock struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Code     string `json:"code"`
	Applied  bool   `json:"applied"`
}

// IsHTML reports whether the block carries an HTML document or fragment.
func (b CodeBlock) IsHTML() bool {
	return strings.EqualFold(b.Language, "html")
}

// MessageContext carries advisory provenance metadata: the code version the
// model was shown and what the user appeared to be asking for.
type MessageContext struct {
	PreviousCodeVersion string   `json:"previousCodeVersion,omitempty"`
	UserIntentions      []string `json:"userIntentions,omitempty"`
}

type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Timestamp      time.Time       `json:"timestamp"`
	CodeBlocks     []CodeBlock     `json:"codeBlocks,omitempty"`
	Context        *MessageContext `json:"context,omitempty"`
}

func NewMessage(conversationID, role, content string) *Message {
	return &Message{
		ID:             generateMessageID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now(),
	}
}

// FirstHTMLBlock returns the first HTML block, falling back to the first
// block of any language when none is tagged html. The second return value
// is false when the message carries no blocks at all.
func (m *Message) FirstHTMLBlock() (CodeBlock, bool) {
	if len(m.CodeBlocks) == 0 {
		return CodeBlock{}, false
	}
	for _, b := range m.CodeBlocks {
		if b.IsHTML() {
			return b, true
		}
	}
	return m.CodeBlocks[0], true
}

func generateMessageID() string {
	return fmt.Sprintf("msg-%d", time.Now().UnixNano())
}
