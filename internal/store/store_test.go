package store

import (
	"testing"

	"webcanvas/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "deepseek-coder")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreshStoreIsSeeded(t *testing.T) {
	s := openTestStore(t)

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("fresh store has %d messages, want 1 seed", len(msgs))
	}
	if msgs[0].Role != models.RoleAssistant {
		t.Errorf("seed role = %q, want assistant", msgs[0].Role)
	}
	if msgs[0].Content == "" {
		t.Errorf("seed message has empty content")
	}
	if s.Conversation().ID == "" {
		t.Errorf("conversation id is empty")
	}
}

func TestAppendAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "deepseek-coder")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	convID := s.Conversation().ID

	user := models.NewMessage(convID, models.RoleUser, "build me a page")
	assistant := models.NewMessage(convID, models.RoleAssistant, "sure")
	assistant.CodeBlocks = []models.CodeBlock{{ID: "code-1-0", Language: "html", Code: "<p>x</p>"}}
	s.Append(user)
	s.Append(assistant)

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := Open(dir, "deepseek-coder")
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Conversation().ID; got != convID {
		t.Errorf("conversation id changed across reload: %q -> %q", convID, got)
	}

	msgs := reopened.Messages()
	if len(msgs) != 3 {
		t.Fatalf("reloaded %d messages, want 3 (seed + user + assistant)", len(msgs))
	}
	if msgs[1].Content != "build me a page" || msgs[1].Role != models.RoleUser {
		t.Errorf("message 1 = %+v, want persisted user message", msgs[1])
	}
	if len(msgs[2].CodeBlocks) != 1 || msgs[2].CodeBlocks[0].Code != "<p>x</p>" {
		t.Errorf("assistant code blocks not preserved: %+v", msgs[2].CodeBlocks)
	}
}

func TestClearResetsToSingleSeed(t *testing.T) {
	s := openTestStore(t)
	convID := s.Conversation().ID

	for i := 0; i < 4; i++ {
		s.Append(models.NewMessage(convID, models.RoleUser, "hello"))
	}
	if got := len(s.Messages()); got != 5 {
		t.Fatalf("have %d messages before clear, want 5", got)
	}

	s.Clear()

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("after clear have %d messages, want exactly 1", len(msgs))
	}
	if msgs[0].Role != models.RoleAssistant {
		t.Errorf("post-clear message role = %q, want assistant seed", msgs[0].Role)
	}
}

func TestLastHTMLSurvivesClearAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "deepseek-coder")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if err := s.SaveLastHTML("<div>working code</div>"); err != nil {
		t.Fatalf("SaveLastHTML() error: %v", err)
	}

	s.Clear()
	if got := s.LastHTML(); got != "<div>working code</div>" {
		t.Errorf("LastHTML after clear = %q, want working code preserved", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := Open(dir, "deepseek-coder")
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	if got := reopened.LastHTML(); got != "<div>working code</div>" {
		t.Errorf("LastHTML after reload = %q, want working code preserved", got)
	}
}

func TestRecentMessagesWindow(t *testing.T) {
	s := NewInMemory("deepseek-coder")
	convID := s.Conversation().ID

	contents := []string{"a", "b", "c", "d", "e", "f"}
	for _, c := range contents {
		s.Append(models.NewMessage(convID, models.RoleUser, c))
	}

	recent := s.RecentMessages(5)
	if len(recent) != 5 {
		t.Fatalf("RecentMessages(5) returned %d messages", len(recent))
	}
	want := []string{"b", "c", "d", "e", "f"}
	for i, msg := range recent {
		if msg.Content != want[i] {
			t.Errorf("recent[%d] = %q, want %q", i, msg.Content, want[i])
		}
	}

	all := s.RecentMessages(100)
	if len(all) != 7 { // seed + 6
		t.Errorf("RecentMessages(100) returned %d, want all 7", len(all))
	}
}

func TestInMemoryStoreWorksWithoutDatabase(t *testing.T) {
	s := NewInMemory("deepseek-coder")

	if got := len(s.Messages()); got != 1 {
		t.Fatalf("in-memory store has %d messages, want seed", got)
	}
	if err := s.SaveLastHTML("<p>ok</p>"); err != nil {
		t.Errorf("SaveLastHTML() error on in-memory store: %v", err)
	}
	if got := s.LastHTML(); got != "<p>ok</p>" {
		t.Errorf("LastHTML = %q", got)
	}
	s.Append(models.NewMessage(s.Conversation().ID, models.RoleUser, "hi"))
	if got := len(s.Messages()); got != 2 {
		t.Errorf("after append have %d messages, want 2", got)
	}
}
