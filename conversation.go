package docqa

import (
	"context"
	"time"
)

// DefaultUserID is used when the caller does not identify a user.
const DefaultUserID = "default"

// Turn is one question and answer exchange in a user's history.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources,omitempty"`
	Refused   bool      `json:"refused"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the turn contains invalid fields.
func (t *Turn) Validate() error {
	if t.UserID == "" {
		return Errorf(EINVALID, "turn user ID required")
	}
	if t.Question == "" {
		return Errorf(EINVALID, "turn question required")
	}
	return nil
}

// ConversationService stores per-user conversation history.
type ConversationService interface {
	// AppendTurn adds a turn to the end of the user's history.
	AppendTurn(ctx context.Context, turn *Turn) error

	// FindTurns returns turns in chronological order. With a limit, the most
	// recent turns are returned.
	FindTurns(ctx context.Context, filter TurnFilter) ([]*Turn, error)

	// ClearTurns removes all turns for a user and returns how many were removed.
	ClearTurns(ctx context.Context, userID string) (int, error)
}

// TurnFilter represents a filter for FindTurns.
type TurnFilter struct {
	UserID *string `json:"userId"`
	Limit  int     `json:"limit"`
}
