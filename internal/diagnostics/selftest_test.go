package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/assessment-api/internal/airtable"
	"github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/leads"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

type stubInspector struct {
	pingErr   error
	schemaErr error
	fields    []string
}

func (s *stubInspector) BaseID() string { return "appTEST" }
func (s *stubInspector) Table() string  { return "Leads" }

func (s *stubInspector) Ping(context.Context) (int, error) {
	if s.pingErr != nil {
		return 0, s.pingErr
	}
	return 1, nil
}

func (s *stubInspector) TableSchema(context.Context) (*airtable.Table, error) {
	if s.schemaErr != nil {
		return nil, s.schemaErr
	}
	t := &airtable.Table{ID: "tbl1", Name: "Leads"}
	for _, f := range s.fields {
		t.Fields = append(t.Fields, airtable.Field{Name: f, Type: "singleLineText"})
	}
	return t, nil
}

func fullConfig() *config.Config {
	return &config.Config{
		AirtableBaseID:    "appTEST",
		AirtableAPIKey:    "pat",
		AirtableTableName: "Leads",
		SlackWebhookURL:   "https://hooks.slack.com/services/T000/B000/XXXX",
	}
}

func newLimiter(t *testing.T) *ratelimit.Limiter {
	t.Helper()
	l, err := ratelimit.New(ratelimit.NewMemoryStore(), 10, ratelimit.DefaultWindow, logging.Discard())
	require.NoError(t, err)
	return l
}

func byName(r Report) map[string]Check {
	out := make(map[string]Check, len(r.Tests))
	for _, c := range r.Tests {
		out[c.Name] = c
	}
	return out
}

func TestRunAllPassing(t *testing.T) {
	runner := NewRunner(fullConfig(), &stubInspector{fields: leads.ExpectedFields()}, newLimiter(t), logging.Discard())
	report := runner.Run(context.Background())

	assert.True(t, report.Success())
	assert.Equal(t, 9, report.Summary.Total)
	assert.Equal(t, 9, report.Summary.Passed, "%+v", report.Tests)
	assert.NotEmpty(t, report.Timestamp)
}

func TestRunWithoutStoreFails(t *testing.T) {
	cfg := fullConfig()
	cfg.AirtableAPIKey = ""
	cfg.SlackWebhookURL = ""
	report := NewRunner(cfg, nil, nil, logging.Discard()).Run(context.Background())

	assert.False(t, report.Success())
	checks := byName(report)
	assert.Equal(t, StatusFailed, checks["Environment Variables"].Status)
	assert.Equal(t, "Missing required environment variables: AIRTABLE_API_KEY", checks["Environment Variables"].Message)
	assert.Equal(t, StatusFailed, checks["Airtable Connectivity"].Status)
	assert.Equal(t, StatusFailed, checks["Field Validation"].Status)
	assert.Equal(t, StatusWarning, checks["Rate Limiting"].Status)
	assert.Equal(t, StatusWarning, checks["Slack Integration"].Status)
	assert.Equal(t, StatusPassed, checks["Lead Scoring Algorithm"].Status)
	assert.Equal(t, StatusPassed, checks["ROI Calculations"].Status)
	assert.Equal(t, StatusPassed, checks["Data Validation"].Status)
	assert.Equal(t, StatusPassed, checks["Record Mapping"].Status)
}

func TestConnectivityReportsStoreError(t *testing.T) {
	inspector := &stubInspector{
		pingErr:   &airtable.APIError{StatusCode: 401, Message: "Authentication required"},
		schemaErr: &airtable.TableNotFoundError{Name: "Leads", Available: []string{"Contacts"}},
	}
	checks := byName(NewRunner(fullConfig(), inspector, newLimiter(t), logging.Discard()).Run(context.Background()))

	assert.Equal(t, "Airtable connection failed: Authentication required (status 401)", checks["Airtable Connectivity"].Message)
	assert.Equal(t, "Field validation failed: Table 'Leads' not found", checks["Field Validation"].Message)
}

func TestFieldsMissingIsWarning(t *testing.T) {
	checks := byName(NewRunner(fullConfig(), &stubInspector{fields: []string{"Name"}}, newLimiter(t), logging.Discard()).Run(context.Background()))
	c := checks["Field Validation"]
	assert.Equal(t, StatusWarning, c.Status)
	assert.Contains(t, c.Message, "fields missing in Airtable")
}

func TestSlackURLFormat(t *testing.T) {
	cfg := fullConfig()
	cfg.SlackWebhookURL = "https://example.com/webhook"
	checks := byName(NewRunner(cfg, &stubInspector{}, newLimiter(t), logging.Discard()).Run(context.Background()))
	assert.Equal(t, "Slack webhook URL format may be incorrect", checks["Slack Integration"].Message)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis: connection refused")
}

func TestRateLimitDegraded(t *testing.T) {
	l, err := ratelimit.New(failingStore{}, 10, time.Minute, logging.Discard())
	require.NoError(t, err)
	checks := byName(NewRunner(fullConfig(), &stubInspector{}, l, logging.Discard()).Run(context.Background()))
	assert.Equal(t, StatusWarning, checks["Rate Limiting"].Status)
}

func TestSampleLeadIsValidAndHot(t *testing.T) {
	lead := SampleLead()
	assert.Nil(t, leads.Validate(lead))
	score, _ := leads.Assess(lead)
	assert.Equal(t, "Hot", string(score.Tier))
}

func TestServeHTTP(t *testing.T) {
	runner := NewRunner(fullConfig(), &stubInspector{fields: leads.ExpectedFields()}, newLimiter(t), logging.Discard())
	rec := httptest.NewRecorder()
	runner.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/test-integration", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Results Report `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Integration test completed: 9/9 tests passed", body.Message)
	assert.Len(t, body.Results.Tests, 9)
}
