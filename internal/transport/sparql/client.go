// Package sparql executes read queries against a SPARQL 1.1 protocol endpoint
// such as Apache Jena Fuseki.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
)

const (
	resultsContentType = "application/sparql-results+json"
	defaultTimeout     = 30 * time.Second
	maxBodyBytes       = 8 << 20
)

// Config holds the endpoint settings.
type Config struct {
	QueryURL string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client posts form-encoded queries and decodes JSON result sets.
type Client struct {
	queryURL string
	http     *http.Client
	logger   *zap.Logger
}

// New creates a client for the query endpoint (e.g. http://localhost:3030/unibasq/query).
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		queryURL: cfg.QueryURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   cfg.Logger,
	}
}

type resultsDoc struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

// Select runs query and returns its rows. A non-2xx status or an unreadable
// result set is a *domain.RemoteExecutionError carrying the submitted query.
// Transport failures and timeouts are reported the same way with status 0.
func (c *Client) Select(ctx context.Context, query string) (domain.ExecutionResult, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("create sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsContentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(start, "error")
		return domain.ExecutionResult{}, &domain.RemoteExecutionError{Body: err.Error(), Query: query}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(start, "error")
		return domain.ExecutionResult{}, &domain.RemoteExecutionError{
			StatusCode: resp.StatusCode, Body: "read response: " + err.Error(), Query: query,
		}
	}
	c.observe(start, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("sparql endpoint rejected query",
			zap.Int("status", resp.StatusCode), zap.String("query", query))
		return domain.ExecutionResult{}, &domain.RemoteExecutionError{
			StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body)), Query: query,
		}
	}

	res, reason := decodeResults(body)
	if reason != "" {
		return domain.ExecutionResult{}, &domain.RemoteExecutionError{
			StatusCode: resp.StatusCode, Body: reason, Query: query,
		}
	}
	return res, nil
}

// decodeResults converts a SPARQL JSON results document. The second value is a
// non-empty reason when the document has no usable shape.
func decodeResults(body []byte) (domain.ExecutionResult, string) {
	var doc resultsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.ExecutionResult{}, "malformed result JSON: " + err.Error()
	}

	if doc.Boolean != nil {
		return domain.ExecutionResult{
			Vars: []string{"boolean"},
			Rows: []map[string]string{{"boolean": strconv.FormatBool(*doc.Boolean)}},
		}, ""
	}
	if doc.Results == nil || doc.Results.Bindings == nil {
		return domain.ExecutionResult{}, "result JSON has no results.bindings"
	}

	rows := make([]map[string]string, len(doc.Results.Bindings))
	for i, b := range doc.Results.Bindings {
		row := make(map[string]string, len(b))
		for name, term := range b {
			row[name] = term.Value
		}
		rows[i] = row
	}
	return domain.ExecutionResult{Vars: doc.Head.Vars, Rows: rows}, ""
}

// Ping runs ASK {} to check the endpoint is up.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Select(ctx, "ASK {}"); err != nil {
		return fmt.Errorf("sparql ping: %w", err)
	}
	return nil
}

func (c *Client) observe(start time.Time, status string) {
	metrics.SPARQLRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
