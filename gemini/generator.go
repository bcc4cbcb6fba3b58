// Package gemini implements the language model and embedding collaborators
// on top of the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Generator implements docqa.Generator at compile time.
var _ docqa.Generator = (*Generator)(nil)

// Generator implements docqa.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate sends a single-turn prompt and returns the reply text.
func (g *Generator) Generate(ctx context.Context, req docqa.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", docqa.Errorf(docqa.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		BuildConfig(req),
	)
	if err != nil {
		return "", unavailable(err)
	}
	if result == nil {
		return "", docqa.Errorf(docqa.EINTERNAL, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a request.
func BuildConfig(req docqa.GenerateRequest) *genai.GenerateContentConfig {
	temp := req.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return config
}

// unavailable reports a failed model call as EUNAVAILABLE, keeping the
// server message when there is one.
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return docqa.Errorf(docqa.EUNAVAILABLE, "gemini: %d %s", apiErr.Code, apiErr.Message)
	}
	return docqa.Errorf(docqa.EUNAVAILABLE, "gemini: %v", err)
}
