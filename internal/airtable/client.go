// Package airtable talks to the Airtable REST API that stores submitted leads.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/resilience"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

const (
	defaultBaseURL   = "https://api.airtable.com"
	defaultUserAgent = "assessment-api/1.0"
	webBaseURL       = "https://airtable.com"
)

var tracer = otel.Tracer("assessment.internal.airtable")

// Config controls how the client behaves.
type Config struct {
	BaseURL    string
	BaseID     string
	APIKey     string
	Table      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *metrics.LeadMetrics
	// Backoff overrides the wait between create attempts. Defaults to 2^attempt seconds.
	Backoff func(attempt int) time.Duration
}

// Client is a thin Airtable client scoped to a single base and table.
type Client struct {
	baseURL    string
	baseID     string
	apiKey     string
	table      string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.LeadMetrics
	backoff    func(int) time.Duration
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	baseID := strings.TrimSpace(cfg.BaseID)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if baseID == "" || apiKey == "" {
		return nil, errors.New("airtable: base id and api key are required")
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "Leads"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = resilience.Exponential(time.Second)
	}
	return &Client{
		baseURL:    baseURL,
		baseID:     baseID,
		apiKey:     apiKey,
		table:      table,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		backoff:    backoff,
	}, nil
}

// Table returns the configured table name.
func (c *Client) Table() string { return c.table }

// BaseID returns the configured base identifier.
func (c *Client) BaseID() string { return c.baseID }

// RecordURL links to a record in the Airtable web UI.
func (c *Client) RecordURL(recordID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", webBaseURL, c.baseID, url.PathEscape(c.table), recordID)
}

type listResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

// FindByEmail reports whether a record with the given email exists. Lookup
// failures never block a submission: they are logged and reported as "not
// found".
func (c *Client) FindByEmail(ctx context.Context, email string) bool {
	ctx, span := tracer.Start(ctx, "airtable.find_by_email")
	defer span.End()

	query := url.Values{}
	query.Set("filterByFormula", fmt.Sprintf("{Email}='%s'", escapeFormula(strings.TrimSpace(email))))
	query.Set("maxRecords", "1")

	status, body, err := c.do(ctx, http.MethodGet, c.tablePath(), query, nil)
	if err == nil && (status < 200 || status > 299) {
		err = decodeAPIError(status, body)
	}
	var parsed listResponse
	if err == nil {
		if decodeErr := json.Unmarshal(body, &parsed); decodeErr != nil {
			err = fmt.Errorf("airtable: decode list response: %w", decodeErr)
		}
	}
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveDuplicateCheck("error")
		c.logger.Warn("airtable: duplicate check failed, treating as new lead", "error", err)
		return false
	}

	found := len(parsed.Records) > 0
	span.SetAttributes(attribute.Bool("airtable.duplicate", found))
	if found {
		c.metrics.ObserveDuplicateCheck("hit")
	} else {
		c.metrics.ObserveDuplicateCheck("miss")
	}
	return found
}

// Create makes a single attempt to insert a record and classifies the result:
// 2xx is a success carrying the record id, 4xx is terminal, 5xx and transport
// failures are retriable.
func (c *Client) Create(ctx context.Context, fields map[string]any) resilience.Outcome[string] {
	ctx, span := tracer.Start(ctx, "airtable.create")
	defer span.End()

	out := c.create(ctx, fields)
	span.SetAttributes(attribute.String("airtable.outcome", out.Kind.String()))
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	c.metrics.ObserveStoreAttempt(out.Kind.String())
	return out
}

func (c *Client) create(ctx context.Context, fields map[string]any) resilience.Outcome[string] {
	payload, err := json.Marshal(struct {
		Fields map[string]any `json:"fields"`
	}{Fields: fields})
	if err != nil {
		return resilience.Terminal[string](fmt.Errorf("airtable: encode record: %w", err))
	}

	status, body, err := c.do(ctx, http.MethodPost, c.tablePath(), nil, payload)
	if err != nil {
		if ctx.Err() != nil {
			return resilience.Terminal[string](err)
		}
		return resilience.Retriable[string](err)
	}

	switch {
	case status >= 200 && status <= 299:
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			return resilience.Terminal[string](fmt.Errorf("airtable: decode create response: %w", err))
		}
		if created.ID == "" {
			return resilience.Terminal[string](errors.New("airtable: create response missing record id"))
		}
		return resilience.Success(created.ID)
	case status >= 500:
		return resilience.Retriable[string](decodeAPIError(status, body))
	default:
		return resilience.Terminal[string](decodeAPIError(status, body))
	}
}

// CreateWithRetry drives Create until success, a terminal failure, or
// maxAttempts retriable failures.
func (c *Client) CreateWithRetry(ctx context.Context, fields map[string]any, maxAttempts int) (string, error) {
	return resilience.Retry(ctx, resilience.Config{
		MaxAttempts: maxAttempts,
		Backoff:     c.backoff,
		OnRetry: func(attempt int, err error) {
			c.logger.Warn("airtable: create failed, retrying", "attempt", attempt, "max_attempts", maxAttempts, "error", err)
		},
	}, func(ctx context.Context, _ int) resilience.Outcome[string] {
		return c.Create(ctx, fields)
	})
}

// Ping reads at most one record to prove credentials and table access and
// reports how many records came back. Non-2xx answers come back as *APIError.
func (c *Client) Ping(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "airtable.ping")
	defer span.End()

	query := url.Values{}
	query.Set("maxRecords", "1")
	status, body, err := c.do(ctx, http.MethodGet, c.tablePath(), query, nil)
	if err == nil && (status < 200 || status > 299) {
		err = decodeAPIError(status, body)
	}
	var parsed listResponse
	if err == nil {
		if decodeErr := json.Unmarshal(body, &parsed); decodeErr != nil {
			err = fmt.Errorf("airtable: decode list response: %w", decodeErr)
		}
	}
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return len(parsed.Records), nil
}

func (c *Client) tablePath() string {
	return "/v0/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(c.table)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, full, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", defaultUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("airtable: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("airtable: read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// escapeFormula quotes a value for use inside a single-quoted formula string.
func escapeFormula(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// APIError is a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("airtable: %s (status=%d)", e.Message, e.StatusCode)
	case e.Type != "":
		return fmt.Sprintf("airtable: %s (status=%d)", e.Type, e.StatusCode)
	default:
		return "airtable: http status " + strconv.Itoa(e.StatusCode)
	}
}

// Detail is the most specific human-readable description available.
func (e *APIError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Type != "" {
		return e.Type
	}
	return http.StatusText(e.StatusCode)
}

// Client errors (4xx) are never retried.
func (e *APIError) Temporary() bool { return e.StatusCode >= 500 }

// Airtable reports errors either as {"error":{"type":..,"message":..}} or as
// {"error":"NOT_FOUND"}.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(body))
		apiErr.Message = truncate(apiErr.Message, 200)
		return apiErr
	}
	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		apiErr.Type = detailed.Type
		apiErr.Message = detailed.Message
		return apiErr
	}
	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil {
		apiErr.Type = code
	}
	return apiErr
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
