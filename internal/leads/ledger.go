package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Submission is the local record of one processed assessment.
type Submission struct {
	ID             uuid.UUID `json:"id"`
	RecordID       string    `json:"recordId"`
	Email          string    `json:"email"`
	CompanyName    string    `json:"companyName"`
	Score          int       `json:"leadScore"`
	Tier           string    `json:"qualificationLevel"`
	Duplicate      bool      `json:"duplicate"`
	ROIPercentage  int       `json:"roiPercentage"`
	MonthlySavings int       `json:"monthlySavings"`
	SourcePage     string    `json:"sourcePage"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Ledger stores submissions after the record store accepted them.
type Ledger interface {
	Record(ctx context.Context, s *Submission) error
	List(ctx context.Context, limit, offset int) ([]Submission, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	return limit, max(offset, 0)
}

func prepareSubmission(s *Submission) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}

// MemoryLedger keeps submissions in process. Used when no database is configured.
type MemoryLedger struct {
	mu   sync.RWMutex
	rows []Submission
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) Record(_ context.Context, s *Submission) error {
	prepareSubmission(s)
	m.mu.Lock()
	m.rows = append(m.rows, *s)
	m.mu.Unlock()
	return nil
}

// List returns newest submissions first.
func (m *MemoryLedger) List(_ context.Context, limit, offset int) ([]Submission, error) {
	limit, offset = normalizePage(limit, offset)
	m.mu.RLock()
	rows := make([]Submission, len(m.rows))
	copy(rows, m.rows)
	m.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if offset >= len(rows) {
		return []Submission{}, nil
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end], nil
}
