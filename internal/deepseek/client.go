// Package deepseek implements the chat-completions transport against the
// DeepSeek API (OpenAI-compatible request/response shapes).
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"webcanvas/internal/logging"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-coder"
	DefaultTimeout = 2 * time.Minute

	// noResponseFallback mirrors the assistant text used when the API
	// answers successfully but carries no choices.
	noResponseFallback = "Sorry, I couldn't generate a response"
)

// Failure classes surfaced to the caller via errors.Is.
var (
	ErrAuthentication      = errors.New("authentication failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// APIError is a non-2xx response from the completions endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status: %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status: %d. %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusPaymentRequired:
		return ErrInsufficientBalance
	default:
		return nil
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// ChatCompletion performs one synchronous request/response exchange. Non-2xx
// statuses come back as *APIError; 401 and 402 additionally match the
// ErrAuthentication / ErrInsufficientBalance sentinels.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/chat/completions", req)
	if err != nil {
		return "", fmt.Errorf("failed to make chat completion request: %w", err)
	}
	defer resp.Body.Close()

	logging.Debug("chat completion response status: %d", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			logging.Debug("failed to decode error body: %v", err)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: body.Error.Message}
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return noResponseFallback, nil
	}

	return completion.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}
