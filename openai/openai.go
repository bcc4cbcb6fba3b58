// Package openai implements the language model and embedding collaborators
// for OpenAI-compatible APIs, including a local Ollama server's /v1 endpoint.
package openai

import (
	"context"
	"errors"

	"github.com/fwojciec/docqa"
	openai "github.com/sashabaranov/go-openai"
)

// Defaults used when no model is configured.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// NewClient creates a client for apiKey. A non-empty baseURL points it at
// another OpenAI-compatible server such as http://localhost:11434/v1.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// translate maps a client error to code, keeping the server message.
func translate(code, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return docqa.Errorf(code, "%s: %d %s", op, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return docqa.Errorf(code, "%s: %d %s", op, reqErr.HTTPStatusCode, reqErr.HTTPStatus)
	}
	return docqa.Errorf(code, "%s: %v", op, err)
}
