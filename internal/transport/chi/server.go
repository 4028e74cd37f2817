package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	logpkg "github.com/OiherR/TFG-UNIBASQ/internal/logger"
	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
	healthuc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/health"
)

// Replies of the chat front end.
const (
	ChatEmptyReply  = "Escribe una pregunta 🙂"
	ChatFailedReply = "Ha ocurrido un error procesando la consulta."
)

// maxRetriesLimit caps client-supplied retry bounds.
const maxRetriesLimit = 10

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, question string, maxRetries int) domain.AskResult
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the chat front end and the ask API.
type Server struct {
	asker  Asker
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(asker Asker, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{asker: asker, health: health, logger: logger}
}

// Router mounts every route behind the request id, canonical log, recovery
// and metrics middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(jsonRecoverer)
	r.Use(metrics.Middleware())

	r.Post("/chat", s.Chat)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", s.AskPost)
		r.Get("/ask", s.AskGet)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Chat handles POST /chat. It always answers 200 with displayable text.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Message)
	if question == "" {
		writeJSON(w, http.StatusOK, ChatResponse{Answer: ChatEmptyReply})
		return
	}

	res := s.asker.Ask(r.Context(), question, -1)
	if !res.OK() {
		logpkg.FromContext(r.Context()).Warn("chat question failed", zap.Stringp("error", res.Error))
		writeJSON(w, http.StatusOK, ChatResponse{Answer: ChatFailedReply})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Answer: *res.Answer})
}

// AskPost handles POST /api/v1/ask.
func (s *Server) AskPost(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.ask(w, r, req)
}

// AskGet handles GET /api/v1/ask?question=...&max_retries=...
func (s *Server) AskGet(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "question", query, &req.Question); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, fmt.Sprintf("Invalid format for parameter question: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "max_retries", query, &req.MaxRetries); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, fmt.Sprintf("Invalid format for parameter max_retries: %s", err))
		return
	}
	s.ask(w, r, req)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request, req AskRequest) {
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "question is required")
		return
	}
	maxRetries := -1
	if req.MaxRetries != nil {
		if *req.MaxRetries < 0 || *req.MaxRetries > maxRetriesLimit {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				fmt.Sprintf("max_retries must be between 0 and %d", maxRetriesLimit))
			return
		}
		maxRetries = *req.MaxRetries
	}

	writeJSON(w, http.StatusOK, s.asker.Ask(r.Context(), req.Question, maxRetries))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
