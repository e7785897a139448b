package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/assessment-api/internal/airtable"
	"github.com/wolfman30/assessment-api/internal/resilience"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// fakeAirtable is an in-memory stand-in for the Airtable REST and meta APIs.
type fakeAirtable struct {
	mu         sync.Mutex
	existing   map[string]bool
	created    []map[string]any
	createCode int
	fields     []string
	pingCode   int
}

func (f *fakeAirtable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.URL.Path == "/v0/meta/bases/appTEST/tables":
		table := map[string]any{"id": "tblLeads", "name": "Leads"}
		var fields []map[string]string
		for _, name := range f.fields {
			fields = append(fields, map[string]string{"id": "fld" + name, "name": name, "type": "singleLineText"})
		}
		table["fields"] = fields
		json.NewEncoder(w).Encode(map[string]any{"tables": []any{table}})
	case r.Method == http.MethodGet:
		if f.pingCode != 0 {
			w.WriteHeader(f.pingCode)
			w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`))
			return
		}
		formula := r.URL.Query().Get("filterByFormula")
		for email := range f.existing {
			if strings.Contains(formula, "'"+email+"'") {
				w.Write([]byte(`{"records":[{"id":"recOLD","fields":{}}]}`))
				return
			}
		}
		w.Write([]byte(`{"records":[]}`))
	case r.Method == http.MethodPost:
		if f.createCode != 0 {
			w.WriteHeader(f.createCode)
			w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Unknown field name: \"Notes\""}}`))
			return
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body.Fields)
		w.Write([]byte(`{"id":"recNEW","fields":{}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type harness struct {
	fake    *fakeAirtable
	handler *Handler
	ledger  *MemoryLedger
}

func newHarness(t *testing.T, fake *fakeAirtable) *harness {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := airtable.New(airtable.Config{
		BaseURL:    server.URL,
		BaseID:     "appTEST",
		APIKey:     "pat-test",
		HTTPClient: server.Client(),
		Logger:     logging.Discard(),
		Backoff:    resilience.NoBackoff,
	})
	require.NoError(t, err)

	ledger := NewMemoryLedger()
	svc := NewService(ServiceConfig{Store: client, Ledger: ledger, Logger: logging.Discard()})
	return &harness{
		fake:   fake,
		ledger: ledger,
		handler: NewHandler(HandlerConfig{
			Service:   svc,
			Inspector: client,
			Ledger:    ledger,
			HasBaseID: true,
			HasAPIKey: true,
			Logger:    logging.Discard(),
		}),
	}
}

func do(t *testing.T, h http.HandlerFunc, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestSubmitLeadSuccess(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", hotLead())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "recNEW", body["recordId"])
	assert.Equal(t, float64(100), body["leadScore"])
	assert.Equal(t, "Hot", body["qualificationLevel"])
	assert.Equal(t, "Assessment submitted successfully", body["message"])
	assert.Contains(t, body, "processingTime")
	roi := body["roiCalculation"].(map[string]any)
	assert.Equal(t, float64(10203), roi["monthlySavings"])

	require.Len(t, h.fake.created, 1)
	assert.Equal(t, "New Lead", h.fake.created[0][FieldStatus])
	assert.Equal(t, "Voice, Chat, SMS", h.fake.created[0][FieldServicesInterested])

	rows, _ := h.ledger.List(context.Background(), 10, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "recNEW", rows[0].RecordID)
}

func TestSubmitLeadDuplicateIsStoredAndFlagged(t *testing.T) {
	h := newHarness(t, &fakeAirtable{existing: map[string]bool{"jane@acme.com": true}})
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", hotLead())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	require.Len(t, h.fake.created, 1)
	assert.Equal(t, "Duplicate", h.fake.created[0][FieldStatus])
	assert.Equal(t, "Yes", h.fake.created[0][FieldDuplicateFlag])
}

func TestSubmitLeadValidationFailure(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	lead := hotLead()
	lead.Email = "nope"
	lead.Phone = ""
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", lead)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["error"])
	errs := body["validationErrors"].([]any)
	assert.Len(t, errs, 2)
	assert.Empty(t, h.fake.created)
}

func TestSubmitLeadMalformedBody(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", `{"fullName": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestSubmitLeadStoreRejects(t *testing.T) {
	h := newHarness(t, &fakeAirtable{createCode: http.StatusUnprocessableEntity})
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", hotLead())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, `Record store rejected the submission: Unknown field name: "Notes"`, body["error"])
	assert.Contains(t, body, "timestamp")
	assert.Contains(t, body, "processingTime")
}

func TestSubmitLeadStoreDown(t *testing.T) {
	fake := &fakeAirtable{createCode: http.StatusServiceUnavailable}
	h := newHarness(t, fake)
	rec, body := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", hotLead())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Record store unavailable, please try again later", body["error"])
}

func TestPreviewMatchesSubmission(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	_, preview := do(t, h.handler.Preview, http.MethodPost, "/api/assessment/preview", hotLead())
	_, submitted := do(t, h.handler.SubmitLead, http.MethodPost, "/api/submit-lead", hotLead())

	assert.Equal(t, submitted["leadScore"], preview["leadScore"])
	assert.Equal(t, submitted["qualificationLevel"], preview["qualificationLevel"])
	assert.Equal(t, submitted["roiCalculation"], preview["roiCalculation"])
	assert.Contains(t, preview, "breakdown")
}

func TestPreviewAcceptsPartialRecord(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	rec, body := do(t, h.handler.Preview, http.MethodPost, "/api/assessment/preview", `{"decisionRole":"Final decision maker","numberOfCurrentVAs":"2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	// 30 authority + 12 scale + 0 pain + 2 urgency + 2 budget
	assert.Equal(t, float64(46), body["leadScore"])
	assert.Equal(t, "Cold", body["qualificationLevel"])
}

func TestStoreHealthHealthy(t *testing.T) {
	h := newHarness(t, &fakeAirtable{fields: []string{"Name", "Email"}})
	rec, body := do(t, h.handler.StoreHealth, http.MethodGet, "/api/airtable-health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "appTEST", details["baseId"])
	assert.Equal(t, "Leads", details["tableName"])
	assert.Equal(t, "v0", details["apiVersion"])
	assert.Equal(t, float64(0), details["recordCount"])
	info := details["tableInfo"].(map[string]any)
	assert.Equal(t, float64(2), info["fieldCount"])
}

func TestStoreHealthAuthFailure(t *testing.T) {
	h := newHarness(t, &fakeAirtable{pingCode: http.StatusUnauthorized})
	rec, body := do(t, h.handler.StoreHealth, http.MethodGet, "/api/airtable-health", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Airtable API connection failed", body["message"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "Authentication required", details["error"])
}

func TestStoreHealthNotConfigured(t *testing.T) {
	h := NewHandler(HandlerConfig{HasBaseID: true, Logger: logging.Discard()})
	rec, body := do(t, h.StoreHealth, http.MethodGet, "/api/airtable-health", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", body["status"])
	details := body["details"].(map[string]any)
	assert.Equal(t, true, details["hasBaseId"])
	assert.Equal(t, false, details["hasApiKey"])
	assert.Equal(t, "Leads", details["tableName"])
}

func TestValidateFieldsReportsMissing(t *testing.T) {
	h := newHarness(t, &fakeAirtable{fields: []string{"Name", "Email", "Phone"}})
	rec, body := do(t, h.handler.ValidateFields, http.MethodGet, "/api/validate-fields", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["matching"])
	assert.Equal(t, float64(len(ExpectedFields())), summary["totalExpected"])
}

func TestValidateTestData(t *testing.T) {
	h := newHarness(t, &fakeAirtable{fields: ExpectedFields()})

	rec, body := do(t, h.handler.ValidateTestData, http.MethodPost, "/api/validate-fields", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Test data is required", body["error"])

	rec, body = do(t, h.handler.ValidateTestData, http.MethodPost, "/api/validate-fields", map[string]any{"testData": map[string]any{"Name": "Jane"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Test data validation successful", body["message"])
	assert.Equal(t, map[string]any{"fields": map[string]any{"Name": "Jane"}}, body["testSubmission"])
	assert.Empty(t, h.fake.created)
}

func TestValidateTestDataSchemaFailure(t *testing.T) {
	h := newHarness(t, &fakeAirtable{fields: []string{"Name"}})
	rec, body := do(t, h.handler.ValidateTestData, http.MethodPost, "/api/validate-fields", map[string]any{"testData": map[string]any{"Name": "Jane"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Schema validation failed", body["error"])
}

func TestListSubmissions(t *testing.T) {
	h := newHarness(t, &fakeAirtable{})
	for i := 0; i < 3; i++ {
		require.NoError(t, h.ledger.Record(context.Background(), &Submission{RecordID: "rec", CreatedAt: time.Now().Add(time.Duration(i) * time.Second)}))
	}

	rec, body := do(t, h.handler.ListSubmissions, http.MethodGet, "/admin/submissions?limit=2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["submissions"], 2)
	assert.Equal(t, float64(2), body["limit"])

	rec, _ = do(t, h.handler.ListSubmissions, http.MethodGet, "/admin/submissions?offset=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
