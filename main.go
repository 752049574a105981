package main

import (
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"webcanvas/internal/chat"
	"webcanvas/internal/compose"
	"webcanvas/internal/config"
	"webcanvas/internal/deepseek"
	"webcanvas/internal/extract"
	"webcanvas/internal/logging"
	"webcanvas/internal/preview"
	"webcanvas/internal/store"
	"webcanvas/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	dataDir, err := config.DataDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if err := logging.InitLogger(dataDir); err != nil {
		log.Printf("Failed to initialize logging: %v", err)
	}

	if cfg.API.Key == "" {
		logging.Info("No API key configured; requests will fail until DEEPSEEK_API_KEY is set")
	}

	// Conversation history falls back to memory if the database cannot
	// open so the chat stays usable for the session.
	history, err := store.Open(filepath.Join(dataDir, "db"), cfg.API.Model)
	if err != nil {
		logging.Error("Failed to open conversation store, running in memory: %v", err)
		history = store.NewInMemory(cfg.API.Model)
	}
	defer history.Close()

	client := deepseek.NewClient(cfg.API.Endpoint, cfg.API.Key)

	composer := compose.NewComposer(
		history,
		cfg.Context.HistoryWindow,
		compose.NewMunicipalDataProvider(cfg.Context.MunicipalDataURL),
	)

	engine := extract.NewEngine(history)

	sandbox := preview.NewServer(cfg.Preview.Addr)
	if err := sandbox.Start(); err != nil {
		log.Fatalf("Failed to start preview server: %v", err)
	}
	defer sandbox.Close()
	logging.Info("Preview available at %s", sandbox.URL())

	events := ui.NewEvents()
	sandbox.OnSyntaxWarning(events.SyntaxWarning)
	sandbox.OnFixCode(events.FixRequested)

	responder := chat.NewResponder(client, composer, engine, history, events, chat.ModelParams{
		Model:       cfg.API.Model,
		Temperature: cfg.API.Temperature,
		MaxTokens:   cfg.API.MaxTokens,
	})

	editor := &ui.EditorMirror{}
	controller := chat.NewController(history, responder, sandbox, editor)

	chatView := ui.NewChatViewModel(controller, history, editor, events, cfg.API.Model, sandbox.URL(), 80, 24)

	p := tea.NewProgram(chatView, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
