package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "Default config is valid",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "Empty endpoint",
			mutate:  func(c *Config) { c.API.Endpoint = "" },
			wantErr: "api.endpoint",
		},
		{
			name:    "Empty model",
			mutate:  func(c *Config) { c.API.Model = "" },
			wantErr: "api.model",
		},
		{
			name:    "Temperature out of range",
			mutate:  func(c *Config) { c.API.Temperature = 3.5 },
			wantErr: "api.temperature",
		},
		{
			name:    "Non-positive max tokens",
			mutate:  func(c *Config) { c.API.MaxTokens = 0 },
			wantErr: "api.max_tokens",
		},
		{
			name:    "Empty preview address",
			mutate:  func(c *Config) { c.Preview.Addr = "" },
			wantErr: "preview.addr",
		},
		{
			name:    "Zero history window",
			mutate:  func(c *Config) { c.Context.HistoryWindow = 0 },
			wantErr: "context.history_window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
