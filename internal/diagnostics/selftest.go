// Package diagnostics runs the integration self-test behind
// POST /api/test-integration. Every check is read-only: nothing is written
// to the record store and no notification is sent.
package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wolfman30/assessment-api/internal/airtable"
	"github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/leads"
	"github.com/wolfman30/assessment-api/internal/notify"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
	"github.com/wolfman30/assessment-api/internal/scoring"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// Status of a single check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
)

// Check is the result of one self-test step.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Summary counts checks by status.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

// Report is the full self-test outcome.
type Report struct {
	Timestamp string  `json:"timestamp"`
	Tests     []Check `json:"tests"`
	Summary   Summary `json:"summary"`
}

// Success is true when no check failed. Warnings do not count.
func (r Report) Success() bool { return r.Summary.Failed == 0 }

// Runner executes the checks against the live wiring.
type Runner struct {
	cfg       *config.Config
	inspector leads.StoreInspector
	limiter   *ratelimit.Limiter
	logger    *logging.Logger
	now       func() time.Time
}

// NewRunner builds a runner. inspector and limiter may be nil; the matching
// checks then fail or warn instead of panicking.
func NewRunner(cfg *config.Config, inspector leads.StoreInspector, limiter *ratelimit.Limiter, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Runner{cfg: cfg, inspector: inspector, limiter: limiter, logger: logger, now: time.Now}
}

// Run executes every check in order.
func (r *Runner) Run(ctx context.Context) Report {
	report := Report{Timestamp: r.now().UTC().Format(time.RFC3339)}
	for _, check := range []func(context.Context) Check{
		r.checkEnvironment,
		r.checkConnectivity,
		r.checkFields,
		r.checkScoring,
		r.checkROI,
		r.checkValidation,
		r.checkMapping,
		r.checkRateLimit,
		r.checkChatOps,
	} {
		report.Tests = append(report.Tests, check(ctx))
	}
	for _, c := range report.Tests {
		report.Summary.Total++
		switch c.Status {
		case StatusPassed:
			report.Summary.Passed++
		case StatusFailed:
			report.Summary.Failed++
		case StatusWarning:
			report.Summary.Warnings++
		}
	}
	return report
}

// ServeHTTP answers POST /api/test-integration.
func (r *Runner) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	report := r.Run(req.Context())
	if !report.Success() {
		r.logger.Warn("diagnostics: self-test found failures", "failed", report.Summary.Failed, "total", report.Summary.Total)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": report.Success(),
		"message": fmt.Sprintf("Integration test completed: %d/%d tests passed", report.Summary.Passed, report.Summary.Total),
		"results": report,
	})
}

type envVar struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Value      string `json:"value"`
}

func describeVar(name, value string) envVar {
	v := envVar{Name: name, Configured: value != "", Value: "missing"}
	if v.Configured {
		v.Value = "***configured***"
	}
	return v
}

func (r *Runner) checkEnvironment(context.Context) Check {
	c := Check{Name: "Environment Variables", Status: StatusPassed}
	required := []envVar{
		describeVar("AIRTABLE_BASE_ID", r.cfg.AirtableBaseID),
		describeVar("AIRTABLE_API_KEY", r.cfg.AirtableAPIKey),
		describeVar("AIRTABLE_TABLE_NAME", r.cfg.AirtableTableName),
	}
	optional := []envVar{describeVar("SLACK_WEBHOOK_URL", r.cfg.SlackWebhookURL)}
	c.Details = map[string]any{"required": required, "optional": optional}

	missing := unconfigured(required)
	switch {
	case len(missing) > 0:
		c.Status = StatusFailed
		c.Message = "Missing required environment variables: " + strings.Join(missing, ", ")
	case len(unconfigured(optional)) > 0:
		c.Status = StatusWarning
		c.Message = "Optional environment variables not configured: " + strings.Join(unconfigured(optional), ", ")
	default:
		c.Message = "All environment variables configured correctly"
	}
	return c
}

func unconfigured(vars []envVar) []string {
	var out []string
	for _, v := range vars {
		if !v.Configured {
			out = append(out, v.Name)
		}
	}
	return out
}

func (r *Runner) checkConnectivity(ctx context.Context) Check {
	c := Check{Name: "Airtable Connectivity", Status: StatusPassed}
	if r.inspector == nil {
		c.Status = StatusFailed
		c.Message = "Airtable connection failed: record store not configured"
		return c
	}
	start := r.now()
	count, err := r.inspector.Ping(ctx)
	elapsed := r.now().Sub(start).Milliseconds()
	c.Details = map[string]any{"responseTime": fmt.Sprintf("%dms", elapsed), "recordCount": count}
	if err != nil {
		c.Status = StatusFailed
		c.Message = "Airtable connection failed: " + describeStoreError(err)
		return c
	}
	c.Message = fmt.Sprintf("Airtable connection healthy (%dms)", elapsed)
	return c
}

func (r *Runner) checkFields(ctx context.Context) Check {
	c := Check{Name: "Field Validation", Status: StatusPassed}
	if r.inspector == nil {
		c.Status = StatusFailed
		c.Message = "Field validation failed: record store not configured"
		return c
	}
	table, err := r.inspector.TableSchema(ctx)
	if err != nil {
		c.Status = StatusFailed
		c.Message = "Field validation failed: " + describeStoreError(err)
		return c
	}
	report := leads.CheckFields(table)
	c.Details = report
	if report.Summary.Missing == 0 {
		c.Message = fmt.Sprintf("All %d fields validated successfully", report.Summary.Matching)
	} else {
		c.Status = StatusWarning
		c.Message = fmt.Sprintf("%d fields missing in Airtable", report.Summary.Missing)
	}
	return c
}

func describeStoreError(err error) string {
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s (status %d)", apiErr.Detail(), apiErr.StatusCode)
	}
	var notFound *airtable.TableNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("Table '%s' not found", notFound.Name)
	}
	return err.Error()
}

type scoringScenario struct {
	Name     string       `json:"name"`
	Expected scoring.Tier `json:"expectedTier"`
	Actual   int          `json:"actualScore"`
	Tier     scoring.Tier `json:"actualTier"`
	Passed   bool         `json:"passed"`
}

var scoringScenarios = []struct {
	name   string
	in     scoring.Inputs
	expect scoring.Tier
}{
	{"High Score Lead", scoring.Inputs{
		DecisionRole: "Final decision maker", StaffCount: 6, CallAnswerRate: "Under 30%",
		Timeline: "ASAP - within 30 days", Budget: "$5,000+/month", AnnualRevenue: "Over $2M",
		Employees: "100+", MonthlyCallVolume: "1000+", PriorityLevel: "Top 3 business priority", ServicesSelected: 3,
	}, scoring.TierHot},
	{"Medium Score Lead", scoring.Inputs{
		DecisionRole: "Strong influencer", StaffCount: 3, CallAnswerRate: "50-70%",
		Timeline: "1-3 months", Budget: "$1,000-2,000/month", AnnualRevenue: "$500K-1M",
		Employees: "11-50", MonthlyCallVolume: "100-500", PriorityLevel: "Important but not urgent", ServicesSelected: 1,
	}, scoring.TierWarm},
	{"Low Score Lead", scoring.Inputs{
		DecisionRole: "Just researching", CallAnswerRate: "90%+", Timeline: "Over 12 months",
		Budget: "Under $500/month", AnnualRevenue: "Under $100K", Employees: "1-10",
		MonthlyCallVolume: "Under 100", PriorityLevel: "Nice to have",
	}, scoring.TierCold},
}

func (r *Runner) checkScoring(context.Context) Check {
	c := Check{Name: "Lead Scoring Algorithm", Status: StatusPassed}
	results := make([]scoringScenario, 0, len(scoringScenarios))
	failed := 0
	for _, s := range scoringScenarios {
		res := scoring.Score(s.in)
		ok := res.Tier == s.expect
		if !ok {
			failed++
		}
		results = append(results, scoringScenario{Name: s.name, Expected: s.expect, Actual: res.Score, Tier: res.Tier, Passed: ok})
	}
	c.Details = map[string]any{"scenarios": results}
	if failed > 0 {
		c.Status = StatusFailed
		c.Message = fmt.Sprintf("%d scoring scenarios failed", failed)
		return c
	}
	c.Message = fmt.Sprintf("All %d scoring scenarios passed", len(results))
	return c
}

func (r *Runner) checkROI(context.Context) Check {
	c := Check{Name: "ROI Calculations", Status: StatusPassed}
	type calc struct {
		NumVAs          int         `json:"numVAs"`
		ExpectedSavings int         `json:"expectedMonthlySavings"`
		ExpectedROI     int         `json:"expectedROI"`
		Actual          scoring.ROI `json:"actual"`
		Passed          bool        `json:"passed"`
	}
	cases := []calc{
		{NumVAs: 5, ExpectedSavings: 8403, ExpectedROI: 1408},
		{NumVAs: 3, ExpectedSavings: 4803, ExpectedROI: 805},
		{NumVAs: 1, ExpectedSavings: 1203, ExpectedROI: 202},
		{NumVAs: 0, ExpectedSavings: 0, ExpectedROI: 0},
	}
	failed := 0
	for i := range cases {
		roi := scoring.CalculateROI(cases[i].NumVAs)
		cases[i].Actual = roi
		cases[i].Passed = roi.MonthlySavings == cases[i].ExpectedSavings && roi.ROIPercentage == cases[i].ExpectedROI
		if !cases[i].Passed {
			failed++
		}
	}
	c.Details = map[string]any{"calculations": cases}
	if failed > 0 {
		c.Status = StatusFailed
		c.Message = fmt.Sprintf("%d ROI calculations failed", failed)
		return c
	}
	c.Message = fmt.Sprintf("All %d ROI calculations correct", len(cases))
	return c
}

func (r *Runner) checkValidation(context.Context) Check {
	c := Check{Name: "Data Validation", Status: StatusPassed}
	type vcase struct {
		Name       string            `json:"name"`
		Field      string            `json:"field"`
		ShouldPass bool              `json:"shouldPass"`
		Errors     leads.FieldErrors `json:"errors"`
		Passed     bool              `json:"passed"`
	}
	cases := []struct {
		vcase
		mutate func(*leads.LeadRecord)
	}{
		{vcase{Name: "Valid Email", Field: "email", ShouldPass: true}, func(l *leads.LeadRecord) { l.Email = "test@example.com" }},
		{vcase{Name: "Invalid Email", Field: "email"}, func(l *leads.LeadRecord) { l.Email = "invalid-email" }},
		{vcase{Name: "Valid Phone", Field: "phone", ShouldPass: true}, func(l *leads.LeadRecord) { l.Phone = "+1-555-123-4567" }},
		{vcase{Name: "Invalid Phone", Field: "phone"}, func(l *leads.LeadRecord) { l.Phone = "abc" }},
		{vcase{Name: "Valid URL", Field: "website", ShouldPass: true}, func(l *leads.LeadRecord) { l.Website = "https://example.com" }},
		{vcase{Name: "Invalid URL", Field: "website"}, func(l *leads.LeadRecord) { l.Website = "not-a-url" }},
	}
	results := make([]vcase, 0, len(cases))
	failed := 0
	for _, tc := range cases {
		lead := SampleLead()
		tc.mutate(lead)
		res := tc.vcase
		res.Errors = leads.Validate(lead)
		res.Passed = res.ShouldPass == !res.Errors.Has(res.Field)
		if !res.Passed {
			failed++
		}
		results = append(results, res)
	}
	c.Details = map[string]any{"validationTests": results}
	if failed > 0 {
		c.Status = StatusFailed
		c.Message = fmt.Sprintf("%d validation tests failed", failed)
		return c
	}
	c.Message = fmt.Sprintf("All %d validation tests passed", len(results))
	return c
}

func (r *Runner) checkMapping(context.Context) Check {
	c := Check{Name: "Record Mapping", Status: StatusPassed}
	lead := SampleLead()
	score, roi := leads.Assess(lead)
	record := leads.ToExternalRecord(lead, score, roi, false, r.now())

	var missing []string
	for _, name := range leads.WrittenFields() {
		if _, ok := record[name]; !ok {
			missing = append(missing, name)
		}
	}
	c.Details = map[string]any{"fieldCount": len(record), "leadScore": score.Score, "qualificationLevel": score.Tier}
	if len(missing) > 0 {
		c.Status = StatusFailed
		c.Message = "Mapped record is missing fields: " + strings.Join(missing, ", ")
		return c
	}
	c.Message = fmt.Sprintf("Sample lead maps to %d fields - Lead Score: %d/100", len(record), score.Score)
	return c
}

func (r *Runner) checkRateLimit(ctx context.Context) Check {
	c := Check{Name: "Rate Limiting", Status: StatusPassed}
	if r.limiter == nil {
		c.Status = StatusWarning
		c.Message = "Rate limiter not configured"
		return c
	}
	key := "selftest-" + uuid.NewString()
	type attempt struct {
		Request int  `json:"request"`
		Allowed bool `json:"allowed"`
		Count   int  `json:"count"`
	}
	var attempts []attempt
	degraded := false
	for i := 1; i <= 3; i++ {
		d := r.limiter.Check(ctx, key)
		degraded = degraded || d.Degraded
		attempts = append(attempts, attempt{Request: i, Allowed: d.Allowed, Count: d.Count})
	}
	c.Details = map[string]any{"rateLimitResults": attempts, "limit": r.limiter.Limit(), "window": r.limiter.Window().String()}
	switch {
	case degraded:
		c.Status = StatusWarning
		c.Message = "Rate limit store unavailable, limiter is failing open"
	case attempts[0].Allowed && attempts[1].Allowed:
		c.Message = "Rate limiting functioning correctly"
	default:
		c.Status = StatusWarning
		c.Message = "Rate limiting may be too restrictive"
	}
	return c
}

func (r *Runner) checkChatOps(context.Context) Check {
	c := Check{Name: "Slack Integration", Status: StatusPassed}
	url := r.cfg.SlackWebhookURL
	if url == "" {
		c.Status = StatusWarning
		c.Message = "Slack webhook URL not configured"
		c.Details = map[string]any{"configured": false}
		return c
	}
	valid := notify.LooksValid(url)
	c.Details = map[string]any{"configured": true, "validFormat": valid, "url": truncate(url, 50) + "..."}
	if valid {
		c.Message = "Slack webhook configured correctly"
	} else {
		c.Status = StatusWarning
		c.Message = "Slack webhook URL format may be incorrect"
	}
	return c
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
