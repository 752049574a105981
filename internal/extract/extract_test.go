package extract

import (
	"strings"
	"testing"
)

type fakeKeeper struct {
	saved []string
}

func (k *fakeKeeper) SaveLastHTML(code string) error {
	k.saved = append(k.saved, code)
	return nil
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantDisplay   string
		wantLanguages []string
		wantCodes     []string
	}{
		{
			name:          "Single HTML block",
			input:         "```html\n<div>hi</div>\n```",
			wantDisplay:   "",
			wantLanguages: []string{"html"},
			wantCodes:     []string{"<div>hi</div>"},
		},
		{
			name:          "No fences",
			input:         "Just a plain answer with no code at all.",
			wantDisplay:   "Just a plain answer with no code at all.",
			wantLanguages: nil,
			wantCodes:     nil,
		},
		{
			name:          "Two blocks in source order",
			input:         "Here is markup:\n```html\n<p>one</p>\n```\nand style:\n```css\np { color: red; }\n```\ndone.",
			wantDisplay:   "Here is markup:\n\nand style:\n\ndone.",
			wantLanguages: []string{"html", "css"},
			wantCodes:     []string{"<p>one</p>", "p { color: red; }"},
		},
		{
			name:          "Missing language tag defaults to javascript",
			input:         "```\nconsole.log(1);\n```",
			wantDisplay:   "",
			wantLanguages: []string{"javascript"},
			wantCodes:     []string{"console.log(1);"},
		},
		{
			name:          "Uppercase tag is lowercased",
			input:         "```HTML\n<b>x</b>\n```",
			wantDisplay:   "",
			wantLanguages: []string{"html"},
			wantCodes:     []string{"<b>x</b>"},
		},
		{
			name:          "Unterminated fence stays in display text",
			input:         "Sorry, truncated:\n```html\n<div>partial",
			wantDisplay:   "Sorry, truncated:\n```html\n<div>partial",
			wantLanguages: nil,
			wantCodes:     nil,
		},
		{
			name:          "Body whitespace trimmed",
			input:         "```html\n\n  <span>pad</span>  \n\n```",
			wantDisplay:   "",
			wantLanguages: []string{"html"},
			wantCodes:     []string{"<span>pad</span>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(nil)
			display, blocks := engine.Extract(tt.input)

			if display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", display, tt.wantDisplay)
			}
			if len(blocks) != len(tt.wantLanguages) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.wantLanguages))
			}
			for i, block := range blocks {
				if block.Language != tt.wantLanguages[i] {
					t.Errorf("block %d language = %q, want %q", i, block.Language, tt.wantLanguages[i])
				}
				if block.Code != tt.wantCodes[i] {
					t.Errorf("block %d code = %q, want %q", i, block.Code, tt.wantCodes[i])
				}
				if block.Applied {
					t.Errorf("block %d applied = true on freshly extracted block", i)
				}
				if block.ID == "" {
					t.Errorf("block %d has empty id", i)
				}
			}
		})
	}
}

func TestExtractDisplayTextOmitsFencedBodies(t *testing.T) {
	input := "Intro\n```html\n<main>secret</main>\n```\nOutro\n```css\nbody {}\n```"
	engine := NewEngine(nil)
	display, blocks := engine.Extract(input)

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	for _, block := range blocks {
		if strings.Contains(display, block.Code) {
			t.Errorf("display text still contains fenced body %q", block.Code)
		}
	}
}

func TestExtractCheckpointsFirstHTMLBlock(t *testing.T) {
	keeper := &fakeKeeper{}
	engine := NewEngine(keeper)

	input := "```css\nbody {}\n```\n```html\n<div>first</div>\n```\n```html\n<div>second</div>\n```"
	_, blocks := engine.Extract(input)

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if len(keeper.saved) != 1 {
		t.Fatalf("keeper saved %d documents, want 1", len(keeper.saved))
	}
	if keeper.saved[0] != "<div>first</div>" {
		t.Errorf("keeper saved %q, want first html block", keeper.saved[0])
	}
}

func TestExtractBlockIDsUniquePerMessage(t *testing.T) {
	engine := NewEngine(nil)
	_, blocks := engine.Extract("```html\n<i>a</i>\n```\n```html\n<i>b</i>\n```")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID == blocks[1].ID {
		t.Errorf("block ids collide: %q", blocks[0].ID)
	}
}
