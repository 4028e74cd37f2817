package health

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/OiherR/TFG-UNIBASQ/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names as reported by /health.
const (
	CheckCards     = "cards"
	CheckSPARQL    = "sparql"
	CheckLLM       = "llm"
	CheckEmbedding = "embedding"
	CheckCache     = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 5 * time.Second

// Deps are the components to check. Embedding and Cache may be nil.
type Deps struct {
	Cards     CardCounter
	SPARQL    Pinger
	LLM       Pinger
	Embedding EmbeddingChecker
	Cache     Pinger
	// Timeout per check; zero means DefaultTimeout.
	Timeout time.Duration
}

// Service coordinates health checks.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	return &Service{deps: deps}
}

type probe struct {
	name string
	run  func(context.Context) error
}

func (s *Service) probes() []probe {
	probes := []probe{
		{CheckCards, func(context.Context) error {
			if s.deps.Cards == nil || s.deps.Cards.Len() == 0 {
				return errNoCards
			}
			return nil
		}},
		{CheckSPARQL, pingOrMissing(s.deps.SPARQL)},
		{CheckLLM, pingOrMissing(s.deps.LLM)},
	}
	if s.deps.Cache != nil {
		probes = append(probes, probe{CheckCache, s.deps.Cache.Ping})
	}
	if s.deps.Embedding != nil {
		probes = append(probes, probe{CheckEmbedding, s.deps.Embedding.HealthCheck})
	}
	return probes
}

var (
	errNoCards  = errors.New("card store is empty")
	errNotWired = errors.New("component not configured")
)

func pingOrMissing(p Pinger) func(context.Context) error {
	if p == nil {
		return func(context.Context) error { return errNotWired }
	}
	return p.Ping
}

// Check runs every probe concurrently, each under its own timeout. The
// status is Healthy when all pass, Unhealthy when all fail, else Degraded.
func (s *Service) Check(ctx context.Context) Report {
	probes := s.probes()
	errs := make([]error, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
			defer cancel()
			errs[i] = p.run(pctx)
			return nil
		})
	}
	_ = g.Wait()

	log := logger.FromContext(ctx)
	checks := make(map[string]CheckResult, len(probes))
	failed := 0
	for i, p := range probes {
		if errs[i] != nil {
			log.Warn("Health check failed", zap.String("check", p.name), zap.Error(errs[i]))
			checks[p.name] = CheckError
			failed++
			continue
		}
		checks[p.name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(probes):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
