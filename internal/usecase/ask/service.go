// Package ask turns a natural-language question into an answer, either through
// a direct shortcut or by synthesizing, checking and executing a SPARQL query
// with bounded retry.
package ask

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain/card"
	"github.com/OiherR/TFG-UNIBASQ/internal/logger"
	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
)

// Defaults for Config zero values.
const (
	DefaultMaxRetries           = 2
	DefaultContextK             = 10
	DefaultVerbalizeTemperature = 0.2
)

const tracerName = "github.com/OiherR/TFG-UNIBASQ/internal/usecase/ask"

// Config tunes the synthesis loop.
type Config struct {
	MaxRetries           int
	ContextK             int
	VerbalizeTemperature float64
	// Timeout bounds a whole question, attempts included. Once it expires no
	// further attempt starts and the last diagnostic is returned. Zero disables it.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.ContextK <= 0 {
		c.ContextK = DefaultContextK
	}
	if c.VerbalizeTemperature <= 0 {
		c.VerbalizeTemperature = DefaultVerbalizeTemperature
	}
}

// Option configures a Service.
type Option func(*Service)

// WithShortcut installs a direct-answer path tried before synthesis.
func WithShortcut(sc Shortcut) Option {
	return func(s *Service) { s.shortcut = sc }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger sets the base logger. Every question gets a child logger with its ask_id.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service answers questions. It holds no per-question state and is safe for
// concurrent use as long as its collaborators are.
type Service struct {
	retriever Retriever
	gen       Generator
	exec      Executor
	shortcut  Shortcut
	cfg       Config
	tracer    trace.Tracer
	logger    *zap.Logger
}

// New creates the ask service.
func New(r Retriever, gen Generator, exec Executor, cfg Config, opts ...Option) *Service {
	cfg.applyDefaults()
	s := &Service{
		retriever: r,
		gen:       gen,
		exec:      exec,
		cfg:       cfg,
		tracer:    otel.Tracer(tracerName),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MaxRetries is the configured default retry bound.
func (s *Service) MaxRetries() int { return s.cfg.MaxRetries }

type state int

const (
	stateShortcut state = iota
	stateRetrieve
	stateAttempt
	stateDone
	stateFailed
)

// run is the mutable state of one question.
type run struct {
	question   string
	maxRetries int
	cards      []card.Scored
	attempt    int
	lastQuery  string
	lastErr    string
	answer     string
	path       string
}

// Ask answers question with at most maxRetries+1 generation attempts.
// A negative maxRetries uses the configured default. Failures are reported in
// the result, never as an error.
func (s *Service) Ask(ctx context.Context, question string, maxRetries int) domain.AskResult {
	askID := uuid.NewString()
	ctx, log := logger.With(ctx, s.logger, zap.String("ask_id", askID))
	ctx, usage := domain.NewContextWithUsage(ctx)

	ctx, span := s.tracer.Start(ctx, "ask", trace.WithAttributes(attribute.String("ask.id", askID)))
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Failed("", domain.ErrEmptyQuestion.Error())
	}
	if maxRetries < 0 {
		maxRetries = s.cfg.MaxRetries
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	r := &run{question: question, maxRetries: maxRetries, path: "synthesis"}
	st := stateShortcut
	for {
		switch st {
		case stateShortcut:
			st = s.tryShortcut(ctx, r)
		case stateRetrieve:
			st = s.retrieve(ctx, r)
		case stateAttempt:
			st = s.step(ctx, r)
		case stateDone:
			metrics.AskTotal.WithLabelValues(r.path, "answered").Inc()
			span.SetAttributes(attribute.String("ask.path", r.path), attribute.Int("ask.attempts", r.attempt))
			log.Info("question answered",
				zap.String("path", r.path),
				zap.Int("attempts", r.attempt),
				zap.Int64("llm_calls", usage.LLMCalls()),
				zap.Int64("embedding_tokens", usage.EmbeddingTokens()),
				zap.Duration("duration", time.Since(start)),
			)
			if r.path == "shortcut" {
				return domain.Answered("", r.answer)
			}
			return domain.Answered(r.lastQuery, r.answer)
		case stateFailed:
			metrics.AskTotal.WithLabelValues(r.path, "failed").Inc()
			span.SetAttributes(attribute.String("ask.path", r.path), attribute.Int("ask.attempts", r.attempt))
			log.Warn("question failed",
				zap.Int("attempts", r.attempt),
				zap.String("last_error", r.lastErr),
				zap.Int64("llm_calls", usage.LLMCalls()),
				zap.Int64("embedding_tokens", usage.EmbeddingTokens()),
				zap.Duration("duration", time.Since(start)),
			)
			return domain.Failed(r.lastQuery, r.lastErr)
		}
	}
}

func (s *Service) tryShortcut(ctx context.Context, r *run) state {
	if s.shortcut == nil {
		return stateRetrieve
	}
	answer, ok, err := s.shortcut.Answer(ctx, r.question)
	if err != nil {
		logger.FromContext(ctx).Warn("threshold shortcut failed, falling back to synthesis", zap.Error(err))
		return stateRetrieve
	}
	if !ok {
		return stateRetrieve
	}
	r.path = "shortcut"
	r.answer = answer
	return stateDone
}

func (s *Service) retrieve(ctx context.Context, r *run) state {
	cards, err := s.retriever.Search(ctx, r.question, s.cfg.ContextK)
	if err != nil {
		r.lastErr = err.Error()
		return stateFailed
	}
	r.cards = cards
	return stateAttempt
}

// step runs one attempt and decides the next state.
func (s *Service) step(ctx context.Context, r *run) state {
	out := s.attempt(ctx, r.question, r.cards, r.lastErr, r.attempt)
	r.attempt++
	if out.query != "" {
		r.lastQuery = out.query
	}

	if out.kind == outcomeAnswered {
		metrics.SynthesisAttempts.Observe(float64(r.attempt))
		r.answer = out.answer
		return stateDone
	}

	metrics.AttemptFailuresTotal.WithLabelValues(out.kind.String()).Inc()
	r.lastErr = out.err.Error()
	logger.FromContext(ctx).Info("synthesis attempt failed",
		zap.Int("attempt", r.attempt),
		zap.Stringer("kind", out.kind),
		zap.Error(out.err),
	)

	if r.attempt > r.maxRetries || ctx.Err() != nil {
		metrics.SynthesisAttempts.Observe(float64(r.attempt))
		return stateFailed
	}
	return stateAttempt
}
