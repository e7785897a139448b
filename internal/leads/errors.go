package leads

import (
	"errors"
	"fmt"

	"github.com/wolfman30/assessment-api/internal/airtable"
	"github.com/wolfman30/assessment-api/internal/resilience"
)

// ErrStoreNotConfigured is returned when record store credentials are missing.
var ErrStoreNotConfigured = errors.New("leads: record store not configured")

// StoreError wraps a failed record store write with the message shown to the client.
type StoreError struct {
	Public string
	Err    error
}

func (e *StoreError) Error() string { return fmt.Sprintf("leads: store record: %v", e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// classifyStoreError decides what the client may see about a failed write.
// Rejections by the store carry its message; everything else stays generic.
func classifyStoreError(err error) *StoreError {
	var exhausted *resilience.ExhaustedError
	if errors.As(err, &exhausted) {
		return &StoreError{Public: "Record store unavailable, please try again later", Err: err}
	}
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) && !apiErr.Temporary() {
		return &StoreError{Public: "Record store rejected the submission: " + apiErr.Detail(), Err: err}
	}
	return &StoreError{Public: "Failed to save lead, please try again later", Err: err}
}
