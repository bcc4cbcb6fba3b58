// Package answer implements the grounded answering policy: retrieve, decide
// whether the context is relevant, and only then ask the language model.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/fwojciec/docqa"
)

// RefusalMessage is returned when no retrieved passage is relevant.
const RefusalMessage = "I don't have documentation for that topic. The answer was not found in the indexed documentation."

// Defaults used when Policy fields are zero.
const (
	DefaultTopK    = 5
	DefaultTimeout = 120 * time.Second
)

// Ensure Policy implements docqa.Asker at compile time.
var _ docqa.Asker = (*Policy)(nil)

// Policy answers questions strictly from retrieved documentation. A
// question moves from AWAITING_QUERY to RETRIEVING, ends in GROUNDED_ANSWER
// or REFUSAL, and returns to AWAITING_QUERY. Each Ask tracks its own state,
// so a Policy may serve concurrent questions; the final state is reported
// as Answer.State.
type Policy struct {
	Retriever docqa.Retriever
	Generator docqa.Generator

	// Optional.
	Conversations docqa.ConversationService
	Logger        *slog.Logger
	// OnTransition is called on every state change of a question. It may be
	// called from concurrent Ask calls.
	OnTransition func(from, to docqa.AnswerState)

	TopK int
	// IrrelevantDistance is the grounding threshold. When no result is
	// within it the question is refused. Zero accepts any result.
	IrrelevantDistance float64
	Temperature        float32
	MaxTokens          int
	Timeout            time.Duration
	// HistoryTurns is how many earlier turns of the user go into the prompt.
	HistoryTurns int
	// BlockedTopics are refused before retrieval.
	BlockedTopics []string
}

// flow is the state of a single question.
type flow struct {
	state  docqa.AnswerState
	notify func(from, to docqa.AnswerState)
}

func (f *flow) to(state docqa.AnswerState) {
	from := f.state
	f.state = state
	if f.notify != nil && from != state {
		f.notify(from, state)
	}
}

// Ask answers question for userID, defaulting to docqa.DefaultUserID.
// Refusals are answers, not errors. Generator failures are returned as
// EUNAVAILABLE. Every answer is appended to the user's history when
// Conversations is set; a failed append is logged.
func (p *Policy) Ask(ctx context.Context, userID, question string) (*docqa.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "question required")
	}
	if userID == "" {
		userID = docqa.DefaultUserID
	}
	fl := &flow{state: docqa.StateAwaitingQuery, notify: p.OnTransition}
	defer fl.to(docqa.StateAwaitingQuery)

	if topic, ok := p.blockedTopic(question); ok {
		ans := refuse(fl, question, fmt.Sprintf(
			"I don't have %s documentation. I can only answer from the indexed documentation.", topic))
		p.record(ctx, userID, ans)
		return ans, nil
	}

	fl.to(docqa.StateRetrieving)
	results, err := p.Retriever.Retrieve(ctx, question, p.topK())
	if err != nil {
		return nil, err
	}

	relevant := p.relevant(results)
	if len(relevant) == 0 {
		p.logger().Info("refused", "question", question, "retrieved", len(results))
		ans := refuse(fl, question, RefusalMessage)
		p.record(ctx, userID, ans)
		return ans, nil
	}

	req := docqa.GenerateRequest{
		System:      SystemInstruction,
		Prompt:      BuildPrompt(question, relevant, p.history(ctx, userID)),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	gctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	text, err := p.Generator.Generate(gctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if docqa.ErrorCode(err) == docqa.EUNAVAILABLE {
			return nil, err
		}
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "language model unavailable: %v", err)
	}

	fl.to(docqa.StateGrounded)
	ans := &docqa.Answer{
		Question: question,
		Text:     strings.TrimSpace(text),
		State:    docqa.StateGrounded,
		Sources:  docqa.UniqueSources(relevant),
		Results:  relevant,
	}
	p.record(ctx, userID, ans)
	return ans, nil
}

// relevant keeps results within IrrelevantDistance.
func (p *Policy) relevant(results []docqa.SearchResult) []docqa.SearchResult {
	if p.IrrelevantDistance <= 0 {
		return results
	}
	var out []docqa.SearchResult
	for _, r := range results {
		if r.Distance <= p.IrrelevantDistance {
			out = append(out, r)
		}
	}
	return out
}

func refuse(fl *flow, question, message string) *docqa.Answer {
	fl.to(docqa.StateRefusal)
	return &docqa.Answer{Question: question, Text: message, State: docqa.StateRefusal}
}

// blockedTopic reports the first blocked topic the question mentions as
// whole words, ignoring case and punctuation.
func (p *Policy) blockedTopic(question string) (string, bool) {
	if len(p.BlockedTopics) == 0 {
		return "", false
	}
	words := " " + strings.Join(strings.FieldsFunc(strings.ToLower(question), isSeparator), " ") + " "
	for _, topic := range p.BlockedTopics {
		normalized := strings.Join(strings.FieldsFunc(strings.ToLower(topic), isSeparator), " ")
		if normalized != "" && strings.Contains(words, " "+normalized+" ") {
			return topic, true
		}
	}
	return "", false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// history loads the user's recent turns for the prompt. Failures only
// lose context, so they are logged.
func (p *Policy) history(ctx context.Context, userID string) []*docqa.Turn {
	if p.Conversations == nil || p.HistoryTurns <= 0 {
		return nil
	}
	turns, err := p.Conversations.FindTurns(ctx, docqa.TurnFilter{UserID: &userID, Limit: p.HistoryTurns})
	if err != nil {
		p.logger().Warn("history unavailable", "user", userID, "err", err)
		return nil
	}
	return turns
}

func (p *Policy) record(ctx context.Context, userID string, ans *docqa.Answer) {
	if p.Conversations == nil {
		return
	}
	turn := &docqa.Turn{
		UserID:   userID,
		Question: ans.Question,
		Answer:   ans.Text,
		Sources:  ans.Sources,
		Refused:  ans.Refused(),
	}
	if err := p.Conversations.AppendTurn(ctx, turn); err != nil {
		p.logger().Warn("history append failed", "user", userID, "err", err)
	}
}

func (p *Policy) topK() int {
	if p.TopK <= 0 {
		return DefaultTopK
	}
	return p.TopK
}

func (p *Policy) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

func (p *Policy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
