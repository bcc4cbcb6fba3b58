package openai

import (
	"context"
	"math"

	"github.com/fwojciec/docqa"
	openai "github.com/sashabaranov/go-openai"
)

// Ensure Generator implements docqa.Generator at compile time.
var _ docqa.Generator = (*Generator)(nil)

// Generator implements docqa.Generator with the chat completions API.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate sends the system instruction and prompt and returns the first
// choice.
func (g *Generator) Generate(ctx context.Context, req docqa.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", docqa.Errorf(docqa.EINVALID, "prompt required")
	}

	resp, err := g.client.CreateChatCompletion(ctx, BuildRequest(g.model, req))
	if err != nil {
		return "", translate(docqa.EUNAVAILABLE, "openai chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", docqa.Errorf(docqa.EUNAVAILABLE, "openai chat: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildRequest returns the chat completion request for req.
func BuildRequest(model string, req docqa.GenerateRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	// A zero temperature would be dropped from the payload and the server
	// default used instead.
	temp := req.Temperature
	if temp == 0 {
		temp = math.SmallestNonzeroFloat32
	}
	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temp,
		MaxTokens:   req.MaxTokens,
	}
}
