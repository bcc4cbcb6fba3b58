package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.Asker = (*Asker)(nil)

// Asker is a mock implementation of docqa.Asker.
type Asker struct {
	AskFn func(ctx context.Context, userID, question string) (*docqa.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, userID, question string) (*docqa.Answer, error) {
	return a.AskFn(ctx, userID, question)
}

var _ docqa.Generator = (*Generator)(nil)

// Generator is a mock implementation of docqa.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, req docqa.GenerateRequest) (string, error)
}

func (g *Generator) Generate(ctx context.Context, req docqa.GenerateRequest) (string, error) {
	return g.GenerateFn(ctx, req)
}
