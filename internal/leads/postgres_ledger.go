package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface so pgxmock can stand in for a pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresLedger persists submissions to the lead_submissions table.
type PostgresLedger struct {
	db DB
}

// NewPostgresLedger wraps a pgx pool (or anything with the same methods).
func NewPostgresLedger(db DB) *PostgresLedger {
	if db == nil {
		panic("leads: ledger db required")
	}
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Record(ctx context.Context, s *Submission) error {
	prepareSubmission(s)
	_, err := l.db.Exec(ctx, `
		INSERT INTO lead_submissions (id, record_id, email, company_name, score, tier, duplicate, roi_percentage, monthly_savings, source_page, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.RecordID, s.Email, s.CompanyName, s.Score, s.Tier, s.Duplicate,
		s.ROIPercentage, s.MonthlySavings, s.SourcePage, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("leads: record submission: %w", err)
	}
	return nil
}

// List returns newest submissions first.
func (l *PostgresLedger) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := l.db.Query(ctx, `
		SELECT id, record_id, email, company_name, score, tier, duplicate, roi_percentage, monthly_savings, source_page, created_at
		FROM lead_submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list submissions: %w", err)
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.RecordID, &s.Email, &s.CompanyName, &s.Score, &s.Tier,
			&s.Duplicate, &s.ROIPercentage, &s.MonthlySavings, &s.SourcePage, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("leads: scan submission: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list submissions: %w", err)
	}
	return out, nil
}
