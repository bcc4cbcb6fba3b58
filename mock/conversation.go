package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.ConversationService = (*ConversationService)(nil)

// ConversationService is a mock implementation of docqa.ConversationService.
type ConversationService struct {
	AppendTurnFn func(ctx context.Context, turn *docqa.Turn) error
	FindTurnsFn  func(ctx context.Context, filter docqa.TurnFilter) ([]*docqa.Turn, error)
	ClearTurnsFn func(ctx context.Context, userID string) (int, error)
}

func (s *ConversationService) AppendTurn(ctx context.Context, turn *docqa.Turn) error {
	return s.AppendTurnFn(ctx, turn)
}

func (s *ConversationService) FindTurns(ctx context.Context, filter docqa.TurnFilter) ([]*docqa.Turn, error) {
	return s.FindTurnsFn(ctx, filter)
}

func (s *ConversationService) ClearTurns(ctx context.Context, userID string) (int, error) {
	return s.ClearTurnsFn(ctx, userID)
}
