package docqa

import "context"

// AnswerState is a state of the grounded answering state machine.
type AnswerState string

// Answer states. A query moves from AWAITING_QUERY to RETRIEVING and ends in
// either GROUNDED_ANSWER or REFUSAL before returning to AWAITING_QUERY.
const (
	StateAwaitingQuery AnswerState = "AWAITING_QUERY"
	StateRetrieving    AnswerState = "RETRIEVING"
	StateGrounded      AnswerState = "GROUNDED_ANSWER"
	StateRefusal       AnswerState = "REFUSAL"
)

// Answer is the outcome of asking a question.
type Answer struct {
	Question string         `json:"question"`
	Text     string         `json:"text"`
	State    AnswerState    `json:"state"`
	Sources  []string       `json:"sources,omitempty"`
	Results  []SearchResult `json:"-"`
}

// Refused reports whether the answer is a refusal.
func (a *Answer) Refused() bool {
	return a.State == StateRefusal
}

// Asker answers natural language questions from the indexed documentation.
type Asker interface {
	// Ask answers question on behalf of userID. When no retrieved passage is
	// relevant, the answer is a refusal and no model is consulted.
	// Returns EUNAVAILABLE if the language model cannot be reached.
	Ask(ctx context.Context, userID, question string) (*Answer, error)
}

// GenerateRequest is a single prompt for a language model.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Generator produces text from a prompt using a language model.
type Generator interface {
	// Generate returns the model's reply.
	// Returns EUNAVAILABLE on timeouts and unreachable models.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
