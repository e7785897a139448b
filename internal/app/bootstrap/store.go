package bootstrap

import (
	"fmt"

	"github.com/wolfman30/assessment-api/internal/airtable"
	appconfig "github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// BuildRecordStore returns the Airtable client, or nil when credentials are
// missing. Submissions then fail with a configuration error instead of the
// process refusing to start.
func BuildRecordStore(cfg *appconfig.Config, m *metrics.LeadMetrics, logger *logging.Logger) (*airtable.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.AirtableConfigured() {
		logger.Warn("airtable credentials missing, lead submissions will be rejected",
			"has_base_id", cfg.AirtableBaseID != "",
			"has_api_key", cfg.AirtableAPIKey != "",
		)
		return nil, nil
	}
	client, err := airtable.New(airtable.Config{
		BaseURL: cfg.AirtableBaseURL,
		BaseID:  cfg.AirtableBaseID,
		APIKey:  cfg.AirtableAPIKey,
		Table:   cfg.AirtableTableName,
		Timeout: cfg.AirtableTimeout,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: airtable client: %w", err)
	}
	return client, nil
}
