package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/assessment-api/internal/airtable"
	"github.com/wolfman30/assessment-api/internal/scoring"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

const maxBodyBytes = 1 << 20

// StoreInspector exposes the record store checks used by the health and
// field validation endpoints.
type StoreInspector interface {
	BaseID() string
	Table() string
	Ping(ctx context.Context) (int, error)
	TableSchema(ctx context.Context) (*airtable.Table, error)
}

// HandlerConfig wires the HTTP handlers. Inspector is nil when record store
// credentials are missing; HasBaseID/HasAPIKey then explain which.
type HandlerConfig struct {
	Service   *Service
	Inspector StoreInspector
	Ledger    Ledger
	HasBaseID bool
	HasAPIKey bool
	TableName string
	Logger    *logging.Logger
	Now       func() time.Time
}

// Handler serves the lead endpoints.
type Handler struct {
	service   *Service
	inspector StoreInspector
	ledger    Ledger
	hasBaseID bool
	hasAPIKey bool
	tableName string
	logger    *logging.Logger
	now       func() time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	table := cfg.TableName
	if table == "" {
		table = "Leads"
	}
	return &Handler{
		service:   cfg.Service,
		inspector: cfg.Inspector,
		ledger:    cfg.Ledger,
		hasBaseID: cfg.HasBaseID,
		hasAPIKey: cfg.HasAPIKey,
		tableName: table,
		logger:    logger,
		now:       now,
	}
}

type submitResponse struct {
	Success            bool        `json:"success"`
	LeadScore          int         `json:"leadScore"`
	RecordID           string      `json:"recordId"`
	ROICalculation     scoring.ROI `json:"roiCalculation"`
	QualificationLevel string      `json:"qualificationLevel"`
	Message            string      `json:"message"`
	ProcessingTime     int64       `json:"processingTime"`
}

type errorResponse struct {
	Success          bool         `json:"success"`
	Error            string       `json:"error"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
	Timestamp        string       `json:"timestamp,omitempty"`
	ProcessingTime   *int64       `json:"processingTime,omitempty"`
}

// SubmitLead handles POST /api/submit-lead.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	elapsed := func() int64 { return h.now().Sub(start).Milliseconds() }

	var record LeadRecord
	if err := decodeBody(r, &record); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	res, err := h.service.Submit(r.Context(), &record)
	if err != nil {
		var fieldErrs FieldErrors
		if errors.As(err, &fieldErrs) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", ValidationErrors: fieldErrs})
			return
		}
		public := "Failed to save lead, please try again later"
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			public = storeErr.Public
		}
		h.logger.Error("leads: submission failed",
			append(contactLogFields(&record), "error", err, "client_ip", clientIP(r))...,
		)
		ms := elapsed()
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:          public,
			Timestamp:      formatTime(h.now()),
			ProcessingTime: &ms,
		})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:            true,
		LeadScore:          res.Score.Score,
		RecordID:           res.RecordID,
		ROICalculation:     res.ROI,
		QualificationLevel: string(res.Score.Tier),
		Message:            "Assessment submitted successfully",
		ProcessingTime:     elapsed(),
	})
}

// Preview handles POST /api/assessment/preview: scoring only, no I/O.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var record LeadRecord
	if err := decodeBody(r, &record); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	score, roi := Assess(&record)
	writeJSON(w, http.StatusOK, map[string]any{
		"leadScore":          score.Score,
		"qualificationLevel": score.Tier,
		"breakdown":          score.Breakdown,
		"roiCalculation":     roi,
	})
}

type healthResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	Timestamp string         `json:"timestamp"`
}

type tableInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	FieldCount int         `json:"fieldCount"`
	Fields     []fieldInfo `json:"fields"`
}

type fieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// StoreHealth handles GET /api/airtable-health.
func (h *Handler) StoreHealth(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	responseTime := func() string { return fmt.Sprintf("%dms", h.now().Sub(start).Milliseconds()) }
	respond := func(status int, state, message string, details map[string]any) {
		writeJSON(w, status, healthResponse{Status: state, Message: message, Details: details, Timestamp: formatTime(h.now())})
	}

	if h.inspector == nil {
		respond(http.StatusInternalServerError, "error", "Airtable environment variables not configured", map[string]any{
			"hasBaseId": h.hasBaseID,
			"hasApiKey": h.hasAPIKey,
			"tableName": h.tableName,
		})
		return
	}

	count, err := h.inspector.Ping(r.Context())
	if err != nil {
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) {
			respond(apiErr.StatusCode, "error", "Airtable API connection failed", map[string]any{
				"statusCode":   apiErr.StatusCode,
				"statusText":   http.StatusText(apiErr.StatusCode),
				"error":        apiErr.Detail(),
				"responseTime": responseTime(),
			})
			return
		}
		h.logger.Error("leads: store health check failed", "error", err)
		respond(http.StatusInternalServerError, "error", "Airtable health check failed", map[string]any{
			"error":        err.Error(),
			"responseTime": responseTime(),
		})
		return
	}
	elapsed := responseTime()

	var info *tableInfo
	if table, err := h.inspector.TableSchema(r.Context()); err == nil {
		info = &tableInfo{ID: table.ID, Name: table.Name, FieldCount: len(table.Fields), Fields: make([]fieldInfo, 0, len(table.Fields))}
		for _, f := range table.Fields {
			info.Fields = append(info.Fields, fieldInfo{Name: f.Name, Type: f.Type})
		}
	} else {
		h.logger.Debug("leads: table schema unavailable", "error", err)
	}

	respond(http.StatusOK, "healthy", "Airtable integration is working correctly", map[string]any{
		"baseId":       h.inspector.BaseID(),
		"tableName":    h.inspector.Table(),
		"recordCount":  count,
		"responseTime": elapsed,
		"apiVersion":   "v0",
		"tableInfo":    info,
	})
}

// fieldCheck runs the schema comparison and returns the status and body the
// GET endpoint answers with.
func (h *Handler) fieldCheck(ctx context.Context) (int, any) {
	if h.inspector == nil {
		return http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Airtable environment variables not configured",
			"details": map[string]any{"hasBaseId": h.hasBaseID, "hasApiKey": h.hasAPIKey},
		}
	}
	table, err := h.inspector.TableSchema(ctx)
	if err != nil {
		var notFound *airtable.TableNotFoundError
		var apiErr *airtable.APIError
		switch {
		case errors.As(err, &notFound):
			return http.StatusNotFound, map[string]any{
				"success": false,
				"error":   fmt.Sprintf("Table '%s' not found", notFound.Name),
				"details": map[string]any{"availableTables": notFound.Available},
			}
		case errors.As(err, &apiErr):
			return apiErr.StatusCode, map[string]any{
				"success": false,
				"error":   "Failed to fetch Airtable schema",
				"details": map[string]any{
					"status":     apiErr.StatusCode,
					"statusText": http.StatusText(apiErr.StatusCode),
					"response":   apiErr.Detail(),
				},
			}
		default:
			h.logger.Error("leads: field validation failed", "error", err)
			return http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Field validation failed",
				"details": map[string]any{"message": err.Error()},
			}
		}
	}
	return http.StatusOK, CheckFields(table)
}

// ValidateFields handles GET /api/validate-fields.
func (h *Handler) ValidateFields(w http.ResponseWriter, r *http.Request) {
	status, body := h.fieldCheck(r.Context())
	writeJSON(w, status, body)
}

// ValidateTestData handles POST /api/validate-fields: a dry run that checks
// the schema and echoes the record that would be written.
func (h *Handler) ValidateTestData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestData map[string]any `json:"testData"`
	}
	if err := decodeBody(r, &req); err != nil || req.TestData == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Test data is required"})
		return
	}

	status, body := h.fieldCheck(r.Context())
	report, ok := body.(FieldReport)
	if status != http.StatusOK || !ok || !report.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    false,
			"error":      "Schema validation failed",
			"validation": body,
		})
		return
	}

	h.logger.Info("leads: test submission prepared", "field_count", len(req.TestData))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Test data validation successful",
		"testSubmission": map[string]any{"fields": req.TestData},
		"validation":     report,
	})
}

// ListSubmissions handles GET /admin/submissions.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Submission ledger not configured"})
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "offset must be an integer"})
		return
	}
	limit, offset = normalizePage(limit, offset)

	rows, err := h.ledger.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("leads: list submissions failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to list submissions"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": rows,
		"limit":       limit,
		"offset":      offset,
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP strips the port chi's RealIP leaves on RemoteAddr when no proxy
// header was present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
