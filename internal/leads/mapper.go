package leads

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/assessment-api/internal/scoring"
)

// ExternalRecord is the flat column -> value payload sent to the record store.
// encoding/json writes map keys sorted, so equal records encode identically.
type ExternalRecord map[string]any

// Follow-up priorities.
const (
	PriorityImmediate = "Immediate"
	PriorityHigh      = "High"
	PriorityMedium    = "Medium"
	PriorityLow       = "Low"
)

// Recommended next actions.
const (
	ActionScheduleDemo  = "Schedule Demo Call"
	ActionSendProposal  = "Send Proposal"
	ActionFollowUpDemo  = "Follow Up Demo"
	ActionNurture       = "Nurture Email Sequence"
	notReadyForDemo     = "Not ready for demo"
	isoMillis           = "2006-01-02T15:04:05.000Z07:00"
	hotFollowUpDelay    = 2 * time.Hour
	defaultFollowUpWait = 24 * time.Hour
)

// FollowUpPriority ranks how fast sales should respond.
func FollowUpPriority(score int, timeline string) string {
	switch {
	case score >= scoring.HotThreshold:
		return PriorityImmediate
	case score >= scoring.WarmThreshold && strings.TrimSpace(timeline) == scoring.TimelineASAP:
		return PriorityHigh
	case score >= scoring.WarmThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// NextAction recommends the next sales step for a lead.
func NextAction(r *LeadRecord, score int) string {
	demo := strings.TrimSpace(r.PreferredDemo)
	switch {
	case score >= scoring.HotThreshold:
		return ActionScheduleDemo
	case score >= scoring.WarmThreshold:
		return ActionSendProposal
	case demo != "" && demo != notReadyForDemo:
		return ActionFollowUpDemo
	default:
		return ActionNurture
	}
}

// FollowUpAt is when the first touch is due.
func FollowUpAt(score int, submittedAt time.Time) time.Time {
	if score >= scoring.HotThreshold {
		return submittedAt.Add(hotFollowUpDelay)
	}
	return submittedAt.Add(defaultFollowUpWait)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ToExternalRecord builds the record-store payload. It does no I/O; the
// submission clock is passed in so equal inputs always produce equal output.
func ToExternalRecord(r *LeadRecord, score scoring.Result, roi scoring.ROI, isDuplicate bool, submittedAt time.Time) ExternalRecord {
	rec := make(ExternalRecord, len(formFields)+len(computedFields))
	for _, f := range formFields {
		rec[f.column] = f.value(r)
	}

	status, dupFlag := "New Lead", "No"
	if isDuplicate {
		status, dupFlag = "Duplicate", "Yes"
	}
	leadStatus := "Unqualified"
	if score.Score >= scoring.WarmThreshold {
		leadStatus = "Qualified"
	}
	created := formatTime(submittedAt)

	rec[FieldLeadScore] = score.Score
	rec[FieldMonthlySavings] = roi.MonthlySavings
	rec[FieldAnnualSavings] = roi.AnnualSavings
	rec[FieldROIPercentage] = float64(roi.ROIPercentage) / 100
	rec[FieldQualification] = string(score.Tier)
	rec[FieldFollowUpPriority] = FollowUpPriority(score.Score, r.Timeline)
	rec[FieldNextAction] = NextAction(r, score.Score)
	rec[FieldStatus] = status
	rec[FieldLeadStatus] = leadStatus
	rec[FieldLeadSourcePage] = sourcePage(r)
	rec[FieldCreatedAt] = created
	rec[FieldFollowUpDate] = formatTime(FollowUpAt(score.Score, submittedAt))
	rec[FieldSubmissionIP] = maskedSubmissionAddress
	rec[FieldFormVersion] = formVersion
	rec[FieldProcessingTime] = submittedAt.UnixMilli()
	rec[FieldDuplicateFlag] = dupFlag
	rec[FieldNotes] = fmt.Sprintf("Lead Score: %d/100 | Qualification: %s | ROI: %d%% | Submitted: %s",
		score.Score, score.Tier, roi.ROIPercentage, created)
	return rec
}
