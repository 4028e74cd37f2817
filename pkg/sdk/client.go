package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	defaultTimeout = 5 * time.Minute
	maxErrorBody   = 4 << 10
)

// Client talks to a running graphrag server.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	obs       *observer
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout, userAgent: "graphrag-sdk"}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("sdk: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sdk: base url %q must be http or https", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: u, http: hc, userAgent: cfg.userAgent, obs: obs}, nil
}

// Ask sends a question. maxRetries < 0 lets the server use its default.
// An unanswered question is not an error: check AskResult.Error.
func (c *Client) Ask(ctx context.Context, question string, maxRetries int) (AskResult, error) {
	start := time.Now()
	req := askRequest{Question: question}
	if maxRetries >= 0 {
		req.MaxRetries = &maxRetries
	}

	var res AskResult
	err := c.do(ctx, http.MethodPost, "/api/v1/ask", req, &res)
	status := statusOK
	if err == nil && res.Answer == nil {
		status = statusUnanswered
	}
	c.obs.observe("ask", start, status, err)
	return res, err
}

// Chat sends a message to the chat endpoint and returns the displayable reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	start := time.Now()
	var res chatResponse
	err := c.do(ctx, http.MethodPost, "/chat", chatRequest{Message: message}, &res)
	c.obs.observe("chat", start, statusOK, err)
	return res.Answer, err
}

// Health fetches the component health report. A degraded server answers 503
// with a report, which is returned without error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	var res HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, &res, http.StatusServiceUnavailable)
	c.obs.observe("health", start, statusOK, err)
	return res, err
}

// do sends body as JSON and decodes a 2xx (or an accepted status) reply into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any, accept ...int) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sdk: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), rdr)
	if err != nil {
		return fmt.Errorf("sdk: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 && !slices.Contains(accept, resp.StatusCode) {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sdk: decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// IsValidation reports whether err is a request the server rejected as invalid.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}
