// Package notify fans a stored lead out to the chat-ops, email and follow-up
// channels. Delivery is best effort: no channel failure reaches the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/internal/scoring"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

// ChatAlerter posts a priority alert to a chat-ops channel.
type ChatAlerter interface {
	Alert(ctx context.Context, lead Lead, score int, recordURL string) error
}

// Channel names used in logs and metrics.
const (
	ChannelChat     = "chat"
	ChannelEmail    = "email"
	ChannelFollowUp = "followup"
)

// DispatcherConfig wires the channels. Any channel may be nil.
type DispatcherConfig struct {
	Chat       ChatAlerter
	Email      EmailSender
	Recipients []string
	FollowUp   FollowUpQueue
	// RecordURL builds the "view record" link for chat alerts.
	RecordURL func(recordID string) string
	Metrics   *metrics.LeadMetrics
	Logger    *logging.Logger
	Now       func() time.Time
}

// Dispatcher runs the tiered notifications for one stored lead.
type Dispatcher struct {
	chat       ChatAlerter
	email      EmailSender
	recipients []string
	followUp   FollowUpQueue
	recordURL  func(string) string
	metrics    *metrics.LeadMetrics
	logger     *logging.Logger
	now        func() time.Time
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.FollowUp == nil {
		cfg.FollowUp = NewLogFollowUpQueue(logger)
	}
	return &Dispatcher{
		chat:       cfg.Chat,
		email:      cfg.Email,
		recipients: cfg.Recipients,
		followUp:   cfg.FollowUp,
		recordURL:  cfg.RecordURL,
		metrics:    cfg.Metrics,
		logger:     logger,
		now:        now,
	}
}

// Dispatch fires every notification the score calls for and waits for them.
// Hot leads get a chat alert and a priority email, warm leads a qualified-lead
// email, and every lead is enrolled in a follow-up sequence. Each channel runs
// in its own goroutine; a failure or panic in one is logged and counted
// without touching the others.
func (d *Dispatcher) Dispatch(ctx context.Context, lead Lead, score int, recordID string) {
	var wg sync.WaitGroup
	run := func(channel string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.metrics.ObserveNotification(channel, "panic")
					d.logger.Error("notify: channel panicked", "channel", channel, "record_id", recordID, "panic", fmt.Sprint(r))
				}
			}()
			if err := fn(ctx); err != nil {
				d.metrics.ObserveNotification(channel, "failed")
				d.logger.Warn("notify: channel failed", "channel", channel, "record_id", recordID, "error", err)
				return
			}
			d.metrics.ObserveNotification(channel, "sent")
		}()
	}
	skip := func(channel, reason string) {
		d.metrics.ObserveNotification(channel, "skipped")
		d.logger.Debug("notify: channel skipped", "channel", channel, "reason", reason, "record_id", recordID)
	}

	switch {
	case score >= scoring.HotThreshold:
		if d.chat != nil {
			run(ChannelChat, func(ctx context.Context) error {
				return d.chat.Alert(ctx, lead, score, d.link(recordID))
			})
		} else {
			skip(ChannelChat, "not configured")
		}
		d.sendEmail(run, skip, highPriorityEmail(lead, score, recordID))
	case score >= scoring.WarmThreshold:
		d.sendEmail(run, skip, qualifiedEmail(lead, score, recordID))
	}

	run(ChannelFollowUp, func(ctx context.Context) error {
		return d.followUp.Enroll(ctx, Enrollment{
			RecordID:   recordID,
			Email:      lead.Email,
			FullName:   lead.FullName,
			Company:    lead.CompanyName,
			Score:      score,
			Tier:       string(scoring.TierFor(score)),
			Sequence:   SequenceFor(score),
			NextAction: lead.NextAction,
			FollowUpAt: lead.FollowUpAt,
			Source:     lead.LeadSourcePage,
			EnrolledAt: d.now().UTC(),
		})
	})

	wg.Wait()
}

func (d *Dispatcher) sendEmail(run func(string, func(context.Context) error), skip func(string, string), msg EmailMessage) {
	if d.email == nil || len(d.recipients) == 0 {
		skip(ChannelEmail, "no sender or recipients")
		return
	}
	run(ChannelEmail, func(ctx context.Context) error {
		var errs []error
		for _, to := range d.recipients {
			m := msg
			m.To = to
			if err := d.email.Send(ctx, m); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func (d *Dispatcher) link(recordID string) string {
	if d.recordURL == nil || recordID == "" {
		return ""
	}
	return d.recordURL(recordID)
}

// SequenceFor picks the follow-up sequence for a score.
func SequenceFor(score int) string {
	switch {
	case score >= scoring.HotThreshold:
		return SequencePriority
	case score >= scoring.WarmThreshold:
		return SequenceQualified
	default:
		return SequenceNurture
	}
}

func highPriorityEmail(lead Lead, score int, recordID string) EmailMessage {
	return EmailMessage{
		Subject:  fmt.Sprintf("High priority lead: %s (%d/100)", lead.CompanyName, score),
		Body:     leadSummary("A high priority assessment just came in. Reach out within 2 hours.", lead, score, recordID),
		RecordID: recordID,
		Category: CategoryHighPriority,
	}
}

func qualifiedEmail(lead Lead, score int, recordID string) EmailMessage {
	return EmailMessage{
		Subject:  fmt.Sprintf("Qualified lead: %s (%d/100)", lead.CompanyName, score),
		Body:     leadSummary("A qualified assessment was submitted. Follow up within 24 hours.", lead, score, recordID),
		RecordID: recordID,
		Category: CategoryQualified,
	}
}

func leadSummary(intro string, lead Lead, score int, recordID string) string {
	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Company: %s\n", lead.CompanyName)
	fmt.Fprintf(&b, "Contact: %s <%s> %s\n", lead.FullName, lead.Email, lead.Phone)
	fmt.Fprintf(&b, "Industry: %s\n", lead.Industry)
	fmt.Fprintf(&b, "Decision role: %s\n", lead.DecisionRole)
	fmt.Fprintf(&b, "Timeline: %s\n", lead.Timeline)
	fmt.Fprintf(&b, "Score: %d/100 (%s)\n", score, scoring.TierFor(score))
	if lead.NextAction != "" {
		fmt.Fprintf(&b, "Next action: %s\n", lead.NextAction)
	}
	fmt.Fprintf(&b, "Record: %s\n", recordID)
	return b.String()
}
