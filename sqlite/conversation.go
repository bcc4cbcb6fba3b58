package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docqa.ConversationService = (*ConversationService)(nil)

// ConversationService implements docqa.ConversationService using SQLite.
type ConversationService struct {
	db *DB
}

// NewConversationService creates a new ConversationService.
func NewConversationService(db *DB) *ConversationService {
	return &ConversationService{db: db}
}

// AppendTurn stores a turn, assigning its ID and creation time.
func (s *ConversationService) AppendTurn(ctx context.Context, turn *docqa.Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	turn.ID = uuid.New().String()
	turn.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (id, user_id, question, answer, sources, refused, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.UserID, turn.Question, turn.Answer, strings.Join(turn.Sources, "\n"),
		turn.Refused, turn.CreatedAt.Format(timeFormat))
	return err
}

// FindTurns returns matching turns oldest first. A positive Limit keeps the
// most recent turns.
func (s *ConversationService) FindTurns(ctx context.Context, filter docqa.TurnFilter) ([]*docqa.Turn, error) {
	var inner strings.Builder
	var args []any

	inner.WriteString("SELECT seq, id, user_id, question, answer, sources, refused, created_at FROM turns WHERE 1=1")
	if filter.UserID != nil {
		inner.WriteString(" AND user_id = ?")
		args = append(args, *filter.UserID)
	}
	inner.WriteString(" ORDER BY seq DESC")
	if filter.Limit > 0 {
		inner.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, question, answer, sources, refused, created_at FROM ("+inner.String()+") ORDER BY seq ASC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []*docqa.Turn{}
	for rows.Next() {
		var turn docqa.Turn
		var sources, createdAt string
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Question, &turn.Answer, &sources,
			&turn.Refused, &createdAt); err != nil {
			return nil, err
		}
		if sources != "" {
			turn.Sources = strings.Split(sources, "\n")
		}
		if turn.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		turns = append(turns, &turn)
	}
	return turns, rows.Err()
}

// ClearTurns deletes a user's turns and reports how many were removed.
func (s *ConversationService) ClearTurns(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, docqa.Errorf(docqa.EINVALID, "user ID required")
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
