package chi

import (
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		route  string
		status int
		want   zapcore.Level
	}{
		{"/api/v1/ask", http.StatusOK, zapcore.InfoLevel},
		{"/api/v1/ask", http.StatusBadRequest, zapcore.InfoLevel},
		{"/chat", http.StatusBadGateway, zapcore.ErrorLevel},
		{"/health", http.StatusOK, zapcore.DebugLevel},
		{"/health", http.StatusServiceUnavailable, zapcore.ErrorLevel},
		{"/metrics", http.StatusOK, zapcore.DebugLevel},
	}
	for _, tc := range tests {
		if got := requestLevel(tc.route, tc.status); got != tc.want {
			t.Errorf("requestLevel(%q, %d) = %v, want %v", tc.route, tc.status, got, tc.want)
		}
	}
}

func TestWideEvent_LogsRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := NewServer(&fakeAsker{}, nil, zap.New(core)).Router()

	do(t, router, http.MethodGet, "/api/v1/ask?question=hola", "")

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/api/v1/ask" {
		t.Errorf("route = %v", fields["route"])
	}
	if fields["request_id"] == "" {
		t.Error("request_id missing")
	}
}
