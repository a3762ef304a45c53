package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks agent-relay/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_decision_recorder.go -package=mocks agent-relay/internal/service DecisionRecorder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_decision_service.go -package=mocks -mock_names=DecisionService=MockDecisionService agent-relay/internal/service DecisionService

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"agent-relay/internal/agent"
	"agent-relay/internal/contextutil"
	"agent-relay/internal/llm"
	"agent-relay/internal/storage"
)

const (
	defaultHistoryLogTail = 4
	maxLoggedContent      = 500
	recordTimeout         = 5 * time.Second
)

// LLMClient is an interface for interacting with a chat completion API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Complete sends the message sequence and returns the reply text.
	Complete(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// DecisionRecorder receives one record per decide call.
type DecisionRecorder interface {
	Record(ctx context.Context, rec storage.DecisionRecord) error
}

// DecisionService relays a conversation history to the model and returns its next action.
type DecisionService interface {
	// Propose asks the model for the next decision. Failures are *RemoteCallError or *ParseError.
	Propose(ctx context.Context, history []agent.Message) (agent.Decision, error)
	// Decide is Propose with every failure converted to a finish decision. It always returns a decision.
	Decide(ctx context.Context, history []agent.Message) agent.Decision
}

// Option configures a DecisionService.
type Option func(*decisionService)

// WithRecorder records the outcome of every Decide call.
func WithRecorder(recorder DecisionRecorder) Option {
	return func(s *decisionService) {
		s.recorder = recorder
	}
}

// WithParseOptions sets how model replies are decoded.
func WithParseOptions(opts agent.ParseOptions) Option {
	return func(s *decisionService) {
		s.parseOpts = opts
	}
}

// WithHistoryLogTail sets how many trailing history messages are logged per call.
// Zero disables history logging.
func WithHistoryLogTail(n int) Option {
	return func(s *decisionService) {
		if n >= 0 {
			s.historyLogTail = n
		}
	}
}

// decisionService implements DecisionService.
type decisionService struct {
	llmClient      LLMClient
	recorder       DecisionRecorder
	parseOpts      agent.ParseOptions
	historyLogTail int
	now            func() time.Time
}

// NewDecisionService creates a new DecisionService.
func NewDecisionService(llmClient LLMClient, opts ...Option) DecisionService {
	s := &decisionService{
		llmClient:      llmClient,
		historyLogTail: defaultHistoryLogTail,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose composes the messages, calls the completion service with greedy decoding
// and decodes the reply.
func (s *decisionService) Propose(ctx context.Context, history []agent.Message) (agent.Decision, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages := agent.BuildMessages(history)
	llmMessages := make([]llm.Message, len(messages))
	for i, m := range messages {
		llmMessages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := s.llmClient.Complete(ctx, llmMessages, llm.ChatParams{Temperature: 0})
	if err != nil {
		logger.ErrorContext(ctx, "error calling LLM", "error", err)
		return agent.Decision{}, &RemoteCallError{Err: err}
	}

	decision, err := agent.ParseDecision(reply, s.parseOpts)
	if err != nil {
		logger.WarnContext(ctx, "model did not return a valid decision", "error", err, "reply", truncate(reply))
		return agent.Decision{}, &ParseError{Reply: reply, Err: err}
	}

	return decision, nil
}

// Decide returns the model's decision, or a finish decision explaining the failure.
func (s *decisionService) Decide(ctx context.Context, history []agent.Message) agent.Decision {
	logger := contextutil.LoggerFromContext(ctx)
	start := s.now()

	s.logHistoryTail(ctx, history)

	decision, err := s.Propose(ctx, history)
	outcome := storage.OutcomeDecided
	if err != nil {
		decision, outcome = Fallback(err)
	}

	latency := s.now().Sub(start)
	logger.InfoContext(ctx, "LLM decision",
		"outcome", outcome,
		"tool_name", decision.Action.ToolName,
		"thought", truncate(decision.Thought),
		"latency_ms", latency.Milliseconds(),
	)

	if s.recorder != nil {
		rec := storage.DecisionRecord{
			RequestID:  contextutil.RequestIDFromContext(ctx),
			CreatedAt:  start.UTC(),
			HistoryLen: len(history),
			Outcome:    outcome,
			ToolName:   decision.Action.ToolName,
			LatencyMs:  latency.Milliseconds(),
		}
		if err != nil {
			rec.Error = err.Error()
		}
		// The row is written even when the caller has gone away.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		if recErr := s.recorder.Record(recCtx, rec); recErr != nil {
			logger.WarnContext(ctx, "failed to record decision", "error", recErr)
		}
		cancel()
	}

	return decision
}

// Fallback converts a Propose failure into the finish decision returned to the caller
// and the journal outcome it corresponds to.
func Fallback(err error) (agent.Decision, string) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return agent.ParseFailureDecision(), storage.OutcomeParseError
	}

	var remoteErr *RemoteCallError
	if errors.As(err, &remoteErr) {
		return agent.RemoteFailureDecision(remoteErr.Err), storage.OutcomeRemoteError
	}

	return agent.RemoteFailureDecision(err), storage.OutcomeRemoteError
}

func (s *decisionService) logHistoryTail(ctx context.Context, history []agent.Message) {
	if s.historyLogTail == 0 {
		return
	}
	logger := contextutil.LoggerFromContext(ctx)

	tail := history
	if len(tail) > s.historyLogTail {
		tail = tail[len(tail)-s.historyLogTail:]
	}

	logger.InfoContext(ctx, "received history for decision", "history_len", len(history))
	offset := len(history) - len(tail)
	for i, m := range tail {
		logger.InfoContext(ctx, "history message",
			"index", offset+i,
			"role", m.Role,
			"content", truncate(m.Content),
		)
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxLoggedContent {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLoggedContent]) + "…"
}
