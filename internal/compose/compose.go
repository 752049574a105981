// Package compose builds the outbound instruction payload for one user
// turn: role framing, provider-contributed context blocks, the code the
// user is currently working with, and a bounded window of recent
// conversation.
package compose

import (
	"context"
	"fmt"
	"strings"

	"webcanvas/internal/logging"
	"webcanvas/internal/models"
)

// HistorySource supplies the conversation window and the prior artifact.
type HistorySource interface {
	RecentMessages(n int) []models.Message
	LastHTML() string
}

// mapKeywords steer the model toward OpenStreetMap as the base map whenever
// the prompt is mapping-related.
var mapKeywords = []string{"map", "location", "osm", "openstreetmap", "מפה"}

const mapGuidance = " please use osm as a base map"

const roleFraming = "You are a helpful AI coding assistant for a web-based code editor. "

const closingInstructions = "When asked to write code, provide complete working examples that can be directly inserted into the editor. " +
	"Always format code blocks with markdown triple backticks and the appropriate language identifier (html, css, or javascript). " +
	"Focus on helping users create web content using HTML, CSS, and JavaScript."

type Composer struct {
	history       HistorySource
	providers     []Provider
	historyWindow int
}

func NewComposer(history HistorySource, historyWindow int, providers ...Provider) *Composer {
	if historyWindow <= 0 {
		historyWindow = 5
	}
	return &Composer{
		history:       history,
		providers:     providers,
		historyWindow: historyWindow,
	}
}

// EnhancePrompt appends map-provider guidance when the prompt matches a
// mapping keyword. The result is always a superset of the original prompt.
func (c *Composer) EnhancePrompt(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, keyword := range mapKeywords {
		if strings.Contains(lower, keyword) {
			enhanced := prompt + mapGuidance
			logging.Debug("prompt enhanced to: %s", enhanced)
			return enhanced
		}
	}
	return prompt
}

// Compose assembles the system message for one turn and returns it together
// with the (possibly enhanced) prompt to send. Provider failures degrade to
// their fallback text; composition itself never fails.
func (c *Composer) Compose(ctx context.Context, prompt string) (string, string) {
	outPrompt := c.EnhancePrompt(prompt)

	var sb strings.Builder
	sb.WriteString(roleFraming)

	for _, provider := range c.providers {
		if !provider.Match(outPrompt) {
			continue
		}
		block, err := provider.Fetch(ctx)
		if err != nil {
			logging.Error("context provider %s failed: %v", provider.Name(), err)
			block = provider.Fallback()
		}
		sb.WriteString(block)
	}

	if previousCode := c.history.LastHTML(); previousCode != "" {
		sb.WriteString("Here is the current HTML code the user is working with:\n\n```html\n")
		sb.WriteString(previousCode)
		sb.WriteString("\n```\n\n")
		sb.WriteString("When generating HTML code, build upon this existing code unless the user explicitly wants to start fresh. ")
	}

	if history := c.formatHistory(prompt); history != "" {
		sb.WriteString("Here is our recent conversation history for context:\n\n")
		sb.WriteString(history)
		sb.WriteString("\n\n")
	}

	sb.WriteString(closingInstructions)

	return sb.String(), outPrompt
}

// formatHistory renders the recent window as alternating User:/Assistant:
// lines. The message that started this turn is filtered out so the prompt
// is not fed back to the model as its own context.
func (c *Composer) formatHistory(currentPrompt string) string {
	recent := c.history.RecentMessages(c.historyWindow)
	if len(recent) == 0 {
		return ""
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		if msg.Content == currentPrompt {
			continue
		}
		label := "Assistant"
		if msg.Role == models.RoleUser {
			label = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.Content))
	}

	return strings.Join(lines, "\n\n")
}
