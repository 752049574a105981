// Package extract parses raw assistant text into discrete code blocks plus
// the residual display text shown in the chat transcript.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"webcanvas/internal/logging"
	"webcanvas/internal/models"
)

// fenceRegex matches a markdown fence: triple backticks, an optional
// language tag, a newline, then a lazily-matched body up to the closer.
// An opener with no closer never matches and stays in the display text.
var fenceRegex = regexp.MustCompile("(?s)```([a-zA-Z]*)\\n(.*?)```")

// DefaultLanguage is assumed when a fence carries no language tag.
const DefaultLanguage = "javascript"

// Keeper persists the most recently generated HTML document. The store
// satisfies this; a nil keeper disables the durability checkpoint.
type Keeper interface {
	SaveLastHTML(code string) error
}

type Engine struct {
	keeper Keeper
}

func NewEngine(keeper Keeper) *Engine {
	return &Engine{keeper: keeper}
}

// Extract scans text for fenced code regions and returns the display text
// (input with every matched fence removed, trimmed) together with the
// blocks in source order. The first HTML-tagged block is checkpointed to
// the keeper immediately, independent of whether it is later applied.
func (e *Engine) Extract(text string) (string, []models.CodeBlock) {
	var blocks []models.CodeBlock
	htmlSaved := false

	matches := fenceRegex.FindAllStringSubmatch(text, -1)
	for _, match := range matches {
		language := strings.ToLower(match[1])
		if language == "" {
			language = DefaultLanguage
		}

		block := models.CodeBlock{
			ID:       generateBlockID(len(blocks)),
			Language: language,
			Code:     strings.TrimSpace(match[2]),
			Applied:  false,
		}

		logging.Debug("extracted code block: language=%s length=%d", block.Language, len(block.Code))

		if block.IsHTML() && !htmlSaved && e.keeper != nil {
			if err := e.keeper.SaveLastHTML(block.Code); err != nil {
				logging.Error("failed to save generated code: %v", err)
			}
			htmlSaved = true
		}

		blocks = append(blocks, block)
	}

	displayText := strings.TrimSpace(fenceRegex.ReplaceAllString(text, ""))
	return displayText, blocks
}

func generateBlockID(index int) string {
	return fmt.Sprintf("code-%d-%d", time.Now().UnixMilli(), index)
}
