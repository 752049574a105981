// Package chat orchestrates conversation turns: it sends prompts to the
// remote model, converts every failure into a visible outcome, persists
// history, and pushes fresh artifacts through the render pipeline.
package chat

import (
	"context"
	"errors"
	"fmt"

	"webcanvas/internal/deepseek"
	"webcanvas/internal/logging"
	"webcanvas/internal/models"
)

const apologyText = "Sorry, I encountered an error while processing your request. Please try again."

// CompletionClient performs the request/response exchange with the model.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, req deepseek.ChatCompletionRequest) (string, error)
}

// PayloadComposer builds the system message and effective prompt for a turn.
type PayloadComposer interface {
	Compose(ctx context.Context, prompt string) (system string, outPrompt string)
}

// Extractor splits raw assistant text into display text and code blocks.
type Extractor interface {
	Extract(text string) (string, []models.CodeBlock)
}

// ArtifactSource supplies the prior artifact for provenance metadata.
type ArtifactSource interface {
	LastHTML() string
}

// ModelParams are the fixed generation parameters for every turn.
type ModelParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Responder produces an assistant Message for a user prompt. Send never
// fails past its boundary: every transport or API error is reported through
// the notifier and resolved to an apologetic assistant Message.
type Responder struct {
	client    CompletionClient
	composer  PayloadComposer
	extractor Extractor
	artifacts ArtifactSource
	notifier  Notifier
	params    ModelParams
}

func NewResponder(client CompletionClient, composer PayloadComposer, extractor Extractor, artifacts ArtifactSource, notifier Notifier, params ModelParams) *Responder {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Responder{
		client:    client,
		composer:  composer,
		extractor: extractor,
		artifacts: artifacts,
		notifier:  notifier,
		params:    params,
	}
}

func (r *Responder) Send(ctx context.Context, conversationID, prompt string) *models.Message {
	previousCode := r.artifacts.LastHTML()
	system, outPrompt := r.composer.Compose(ctx, prompt)

	logging.Debug("sending request to DeepSeek API: prompt=%q", outPrompt)

	content, err := r.client.ChatCompletion(ctx, deepseek.ChatCompletionRequest{
		Model: r.params.Model,
		Messages: []deepseek.ChatMessage{
			{Role: "system", Content: system},
			{Role: models.RoleUser, Content: outPrompt},
		},
		Temperature: r.params.Temperature,
		MaxTokens:   r.params.MaxTokens,
	})
	if err != nil {
		logging.Error("error generating AI response: %v", err)
		r.notifyFailure(err)
		return models.NewMessage(conversationID, models.RoleAssistant, apologyText)
	}

	displayText, blocks := r.extractor.Extract(content)

	msg := models.NewMessage(conversationID, models.RoleAssistant, displayText)
	msg.CodeBlocks = blocks
	msg.Context = &models.MessageContext{
		PreviousCodeVersion: previousCode,
		UserIntentions:      []string{outPrompt},
	}
	return msg
}

// notifyFailure raises exactly one notification, classified by failure
// cause.
func (r *Responder) notifyFailure(err error) {
	switch {
	case errors.Is(err, deepseek.ErrAuthentication):
		r.notifier.Notify("Authentication Error",
			"Invalid API key. Please check your DeepSeek API credentials.", SeverityError)
	case errors.Is(err, deepseek.ErrInsufficientBalance):
		r.notifier.Notify("Billing Error",
			"Insufficient balance in your DeepSeek API account.", SeverityError)
	default:
		var apiErr *deepseek.APIError
		if errors.As(err, &apiErr) {
			r.notifier.Notify("API Request Failed",
				fmt.Sprintf("Status: %d. Please try again later.", apiErr.StatusCode), SeverityError)
			return
		}
		r.notifier.Notify("Error",
			"Failed to generate AI response. Please check your internet connection and API settings.", SeverityError)
	}
}
