package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatCompletionSuccess(t *testing.T) {
	var gotAuth string
	var gotReq ChatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "here you go"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test")
	content, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model: "deepseek-coder",
		Messages: []ChatMessage{
			{Role: "system", Content: "sys"},
			{Role: "user", Content: "make a page"},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	if content != "here you go" {
		t.Errorf("content = %q, want %q", content, "here you go")
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("request messages = %+v, want system then user", gotReq.Messages)
	}
	if gotReq.MaxTokens != 2000 {
		t.Errorf("request max_tokens = %d, want 2000", gotReq.MaxTokens)
	}
}

func TestChatCompletionStatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantErrIs  error
		wantInText string
	}{
		{
			name:       "Unauthorized",
			status:     http.StatusUnauthorized,
			wantErrIs:  ErrAuthentication,
			wantInText: "401",
		},
		{
			name:       "Payment required",
			status:     http.StatusPaymentRequired,
			wantErrIs:  ErrInsufficientBalance,
			wantInText: "402",
		},
		{
			name:       "Server error",
			status:     http.StatusInternalServerError,
			wantErrIs:  nil,
			wantInText: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"message": "upstream says no"},
				})
			}))
			defer server.Close()

			client := NewClient(server.URL, "sk-test")
			_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []ChatMessage{{Role: "user", Content: "x"}},
			})
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != "upstream says no" {
				t.Errorf("Message = %q, want server message", apiErr.Message)
			}
			if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantErrIs)
			}
			if tt.wantErrIs == nil {
				if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrInsufficientBalance) {
					t.Errorf("generic failure matched a specific class: %v", err)
				}
			}
		})
	}
}

func TestChatCompletionEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test")
	content, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "x"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	if content != "Sorry, I couldn't generate a response" {
		t.Errorf("content = %q, want fallback text", content)
	}
}

func TestChatCompletionDefaultsModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "x"}},
	}); err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	if gotModel != DefaultModel {
		t.Errorf("model = %q, want %q", gotModel, DefaultModel)
	}
}
