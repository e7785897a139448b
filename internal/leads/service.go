// Package leads turns an assessment submission into a scored, stored lead:
// validation, duplicate detection, scoring, record mapping, the write to the
// record store and the notification fan-out.
package leads

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/assessment-api/internal/notify"
	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/scoring"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// RecordStore is the external system of record for leads.
type RecordStore interface {
	FindByEmail(ctx context.Context, email string) bool
	CreateWithRetry(ctx context.Context, fields map[string]any, maxAttempts int) (string, error)
}

// Notifier fans a stored lead out to the notification channels.
type Notifier interface {
	Dispatch(ctx context.Context, lead notify.Lead, score int, recordID string)
}

// ServiceConfig wires the pipeline. Store is required for Submit; Ledger and
// Notifier may be nil.
type ServiceConfig struct {
	Store       RecordStore
	Ledger      Ledger
	Notifier    Notifier
	Metrics     *metrics.LeadMetrics
	Logger      *logging.Logger
	MaxAttempts int
	// LookupTimeout bounds the duplicate check.
	LookupTimeout time.Duration
	// StoreBudget bounds the whole create-with-retry sequence.
	StoreBudget time.Duration
	// NotifyTimeout bounds the notification fan-out; NotifyWait is how long
	// Submit waits for it before answering.
	NotifyTimeout time.Duration
	NotifyWait    time.Duration
	Now           func() time.Time
}

// Outcome labels for the submissions metric.
const (
	OutcomeStored      = "stored"
	OutcomeInvalid     = "invalid"
	OutcomeStoreFailed = "store_failed"
)

// Service runs the submission pipeline.
type Service struct {
	store         RecordStore
	ledger        Ledger
	notifier      Notifier
	metrics       *metrics.LeadMetrics
	logger        *logging.Logger
	maxAttempts   int
	lookupTimeout time.Duration
	storeBudget   time.Duration
	notifyTimeout time.Duration
	notifyWait    time.Duration
	now           func() time.Time

	inflight sync.WaitGroup
}

// NewService fills in defaults: 3 attempts, 10s lookups, a 45s store budget,
// 10s for notifications and a 2s wait on them.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:         cfg.Store,
		ledger:        cfg.Ledger,
		notifier:      cfg.Notifier,
		metrics:       cfg.Metrics,
		logger:        logger,
		maxAttempts:   orDefault(cfg.MaxAttempts, 3),
		lookupTimeout: orDefault(cfg.LookupTimeout, 10*time.Second),
		storeBudget:   orDefault(cfg.StoreBudget, 45*time.Second),
		notifyTimeout: orDefault(cfg.NotifyTimeout, 10*time.Second),
		notifyWait:    orDefault(cfg.NotifyWait, 2*time.Second),
		now:           now,
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// Result is what a successful submission produced.
type Result struct {
	RecordID    string
	Score       scoring.Result
	ROI         scoring.ROI
	Duplicate   bool
	SubmittedAt time.Time
}

// Assess scores a record without any I/O. Preview and Submit share it.
func Assess(r *LeadRecord) (scoring.Result, scoring.ROI) {
	return scoring.Score(r.ScoringInputs()), scoring.CalculateROI(r.StaffCount())
}

// Submit validates, scores and stores one lead, then notifies. Validation
// failures come back as FieldErrors and store failures as *StoreError.
// External calls run detached from ctx cancellation so a client hanging up
// cannot leave a half-written lead.
func (s *Service) Submit(ctx context.Context, r *LeadRecord) (*Result, error) {
	if errs := Validate(r); errs != nil {
		s.metrics.ObserveSubmission(OutcomeInvalid)
		return nil, errs
	}
	if s.store == nil {
		s.metrics.ObserveSubmission(OutcomeStoreFailed)
		return nil, &StoreError{Public: "Record store is not configured", Err: ErrStoreNotConfigured}
	}

	detached := context.WithoutCancel(ctx)
	submittedAt := s.now().UTC()
	log := s.logger.With(contactLogFields(r)...)

	lookupCtx, cancelLookup := context.WithTimeout(detached, s.lookupTimeout)
	duplicate := s.store.FindByEmail(lookupCtx, r.Email)
	cancelLookup()

	score, roi := Assess(r)
	s.metrics.ObserveScore(string(score.Tier), score.Score)
	record := ToExternalRecord(r, score, roi, duplicate, submittedAt)

	storeCtx, cancelStore := context.WithTimeout(detached, s.storeBudget)
	recordID, err := s.store.CreateWithRetry(storeCtx, record, s.maxAttempts)
	cancelStore()
	if err != nil {
		s.metrics.ObserveSubmission(OutcomeStoreFailed)
		log.Error("leads: store record failed", "error", err)
		return nil, classifyStoreError(err)
	}
	s.metrics.ObserveSubmission(OutcomeStored)
	log.Info("leads: lead stored",
		"record_id", recordID,
		"score", score.Score,
		"tier", score.Tier,
		"duplicate", duplicate,
		"challenge", ScrubPII(r.CurrentChallenge),
		"questions", ScrubPII(r.AdditionalQuestions),
	)

	s.recordLedger(detached, r, recordID, score, roi, duplicate, submittedAt)
	s.notify(detached, r, score, recordID, submittedAt)

	return &Result{
		RecordID:    recordID,
		Score:       score,
		ROI:         roi,
		Duplicate:   duplicate,
		SubmittedAt: submittedAt,
	}, nil
}

func (s *Service) recordLedger(ctx context.Context, r *LeadRecord, recordID string, score scoring.Result, roi scoring.ROI, duplicate bool, at time.Time) {
	if s.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	err := s.ledger.Record(ctx, &Submission{
		RecordID:       recordID,
		Email:          r.Email,
		CompanyName:    r.CompanyName,
		Score:          score.Score,
		Tier:           string(score.Tier),
		Duplicate:      duplicate,
		ROIPercentage:  roi.ROIPercentage,
		MonthlySavings: roi.MonthlySavings,
		SourcePage:     sourcePage(r),
		CreatedAt:      at,
	})
	if err != nil {
		s.logger.Warn("leads: ledger write failed", "record_id", recordID, "error", err)
	}
}

// notify starts the fan-out and waits at most notifyWait for it. Anything
// still running keeps going in the background until notifyTimeout.
func (s *Service) notify(ctx context.Context, r *LeadRecord, score scoring.Result, recordID string, at time.Time) {
	if s.notifier == nil {
		return
	}
	lead := notify.Lead{
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		CompanyName:    r.CompanyName,
		Industry:       r.Industry,
		Timeline:       r.Timeline,
		DecisionRole:   r.DecisionRole,
		Challenge:      r.CurrentChallenge,
		Driver:         r.WhatsDrivingThisNeed,
		PriorityLevel:  r.CurrentPriorityLevel,
		Tier:           string(score.Tier),
		NextAction:     NextAction(r, score.Score),
		FollowUpAt:     formatTime(FollowUpAt(score.Score, at)),
		LeadSourcePage: sourcePage(r),
	}

	done := make(chan struct{})
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(done)
		nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
		s.notifier.Dispatch(nctx, lead, score.Score, recordID)
	}()

	timer := time.NewTimer(s.notifyWait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("leads: notifications still running, responding without them", "record_id", recordID, "wait", s.notifyWait.String())
	}
}

// Wait blocks until background notifications finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("leads: notifications still in flight: %w", ctx.Err())
	}
}

// contactLogFields identifies a lead in logs without raw contact details.
// email_hash correlates lines for the same address across submissions.
func contactLogFields(r *LeadRecord) []any {
	return []any{
		"email", MaskEmail(r.Email),
		"email_hash", HashEmail(r.Email),
		"phone", MaskPhone(r.Phone),
		"company", r.CompanyName,
	}
}

func sourcePage(r *LeadRecord) string {
	if source := strings.TrimSpace(r.LeadSourcePage); source != "" {
		return source
	}
	return defaultLeadSourcePage
}
