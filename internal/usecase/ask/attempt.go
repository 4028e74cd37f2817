package ask

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
	"github.com/OiherR/TFG-UNIBASQ/internal/sparql"
)

// outcomeKind tags the result of one synthesis attempt.
type outcomeKind int

const (
	outcomeAnswered outcomeKind = iota
	outcomeGenerationFailed
	outcomePolicyViolation
	outcomeExecutionFailed
	outcomeVerbalizeFailed
)

// String is the metrics label of the failure kind.
func (k outcomeKind) String() string {
	switch k {
	case outcomeAnswered:
		return "answered"
	case outcomeGenerationFailed:
		return "generation"
	case outcomePolicyViolation:
		return "policy"
	case outcomeExecutionFailed:
		return "execution"
	case outcomeVerbalizeFailed:
		return "verbalize"
	default:
		return "unknown"
	}
}

// attemptOutcome is what one attempt returns instead of raising.
// query is the last query text the attempt produced, if any.
type attemptOutcome struct {
	kind   outcomeKind
	query  string
	answer string
	err    error
}

// attempt runs prompt, generate, extract, sanitize, execute and verbalize once.
func (s *Service) attempt(
	ctx context.Context, question string, cards []card.Scored, lastErr string, n int,
) attemptOutcome {
	ctx, span := s.tracer.Start(ctx, "ask.attempt", trace.WithAttributes(attribute.Int("attempt", n)))
	defer span.End()

	out := s.runAttempt(ctx, question, cards, lastErr)
	span.SetAttributes(attribute.String("outcome", out.kind.String()))
	if out.err != nil {
		span.SetStatus(codes.Error, out.err.Error())
	}
	return out
}

func (s *Service) runAttempt(ctx context.Context, question string, cards []card.Scored, lastErr string) attemptOutcome {
	prompt := sparql.BuildQueryPrompt(question, cards, lastErr)
	usage := domain.UsageFromContext(ctx)
	usage.AddLLMCall()
	raw, err := s.gen.Generate(ctx, prompt, 0)
	if err != nil {
		return attemptOutcome{kind: outcomeGenerationFailed, err: err}
	}

	candidate := sparql.Extract(raw)
	query, err := sparql.Sanitize(question, candidate)
	if err != nil {
		return attemptOutcome{kind: outcomePolicyViolation, query: candidate, err: err}
	}

	res, err := s.exec.Select(ctx, query)
	if err != nil {
		return attemptOutcome{kind: outcomeExecutionFailed, query: query, err: err}
	}

	usage.AddLLMCall()
	answer, err := s.gen.Generate(ctx, sparql.BuildAnswerPrompt(question, query, res), s.cfg.VerbalizeTemperature)
	if err != nil {
		return attemptOutcome{kind: outcomeVerbalizeFailed, query: query, err: err}
	}
	return attemptOutcome{kind: outcomeAnswered, query: query, answer: answer}
}
