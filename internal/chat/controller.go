package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"webcanvas/internal/logging"
	"webcanvas/internal/models"
	"webcanvas/internal/preview"
)

// FixCodeSentinel marks self-issued repair prompts. Responses to these
// turns are rendered but kept out of persisted history.
const FixCodeSentinel = "Fix the HTML code syntax."

// LongWaitThreshold is how long a turn may run before the UI switches to
// the richer "still working" presentation. Purely cosmetic: it triggers no
// retry and no cancellation.
const LongWaitThreshold = 10 * time.Second

// Sender resolves one user prompt to an assistant Message.
type Sender interface {
	Send(ctx context.Context, conversationID, prompt string) *models.Message
}

// HistoryStore is the durable conversation state the controller drives.
type HistoryStore interface {
	Conversation() models.Conversation
	Messages() []models.Message
	Append(msg *models.Message)
	Clear()
}

// Editor mirrors applied documents into the externally owned editing
// surface.
type Editor interface {
	SetValue(content string)
}

// Controller owns turn-taking. The user message is persisted before the
// network call so it survives a failed turn; responses carry a sequence
// number and only the latest issued request may apply its result, so a slow
// turn overtaken by a newer one is discarded instead of appended out of
// order.
type Controller struct {
	store     HistoryStore
	responder Sender
	sandbox   preview.Sandbox
	editor    Editor // optional

	mu     sync.Mutex
	issued uint64
}

func NewController(store HistoryStore, responder Sender, sandbox preview.Sandbox, editor Editor) *Controller {
	return &Controller{
		store:     store,
		responder: responder,
		sandbox:   sandbox,
		editor:    editor,
	}
}

// Messages returns the current conversation transcript.
func (c *Controller) Messages() []models.Message {
	return c.store.Messages()
}

// Send runs one complete turn and returns the assistant message together
// with whether it was applied (false means a newer request superseded this
// one and its result was discarded). Send blocks for the round trip; run it
// from a goroutine or command.
func (c *Controller) Send(ctx context.Context, input string) (*models.Message, bool) {
	conv := c.store.Conversation()

	userMsg := models.NewMessage(conv.ID, models.RoleUser, input)

	c.mu.Lock()
	c.store.Append(userMsg)
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	response := c.responder.Send(ctx, conv.ID, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.issued {
		logging.Info("discarding stale response: seq=%d latest=%d", seq, c.issued)
		return response, false
	}

	block, hasBlock := response.FirstHTMLBlock()
	if hasBlock && strings.TrimSpace(block.Code) != "" {
		for i := range response.CodeBlocks {
			if response.CodeBlocks[i].ID == block.ID {
				response.CodeBlocks[i].Applied = true
				break
			}
		}
	}

	if !strings.Contains(input, FixCodeSentinel) {
		c.store.Append(response)
	}

	if hasBlock {
		c.applyLocked(block)
	}

	return response, true
}

// Apply pushes a single code block through the render pipeline. Reapplying
// the same block re-renders but never touches conversation history.
func (c *Controller) Apply(block models.CodeBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(block)
}

func (c *Controller) applyLocked(block models.CodeBlock) {
	if strings.TrimSpace(block.Code) == "" {
		return
	}

	doc := preview.EnsureDocument(block.Code)

	if err := c.sandbox.Load(doc); err != nil {
		logging.Error("failed to load preview: %v", err)
	}
	if c.editor != nil {
		c.editor.SetValue(doc)
	}
}

// Clear resets the conversation to the seed message.
func (c *Controller) Clear() {
	c.store.Clear()
}
