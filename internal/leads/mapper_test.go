package leads

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/assessment-api/internal/scoring"
)

var fixedClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func hotLead() *LeadRecord {
	return &LeadRecord{
		FullName:              "Jane Doe",
		JobTitle:              "Owner",
		Email:                 "jane@acme.com",
		Phone:                 "+1 (555) 123-4567",
		CompanyName:           "Acme Dental",
		Industry:              "Healthcare",
		AnnualRevenue:         "Over $2M",
		NumberOfEmployees:     "51-100",
		NumberOfCurrentVAs:    "6+",
		MonthlyCallVolume:     "1000+",
		CurrentCallAnswerRate: "Under 30%",
		CurrentPriorityLevel:  "Top 3 business priority",
		AIServicesInterest:    List("Voice", "Chat", "SMS"),
		CurrentBudget:         "$5,000+/month",
		Timeline:              "ASAP - within 30 days",
		DecisionRole:          "Final decision maker",
		StakeholdersInvolved:  List("CEO", "COO"),
		PreferredDemo:         "This week",
	}
}

func coldLead() *LeadRecord {
	return &LeadRecord{
		FullName:           "Sam Cold",
		Email:              "sam@example.com",
		Phone:              "5551234567",
		CompanyName:        "Cold Co",
		Industry:           "Retail",
		NumberOfCurrentVAs: "0",
		Timeline:           "Just exploring",
		DecisionRole:       "Just researching",
		AIServicesInterest: List(),
	}
}

func mapLead(r *LeadRecord, dup bool) ExternalRecord {
	score := scoring.Score(r.ScoringInputs())
	roi := scoring.CalculateROI(r.StaffCount())
	return ToExternalRecord(r, score, roi, dup, fixedClock)
}

func TestToExternalRecordHotLead(t *testing.T) {
	rec := mapLead(hotLead(), false)

	assert.Equal(t, "Jane Doe", rec[FieldName])
	assert.Equal(t, "Voice, Chat, SMS", rec[FieldServicesInterested])
	assert.Equal(t, "CEO, COO", rec[FieldStakeholders])
	assert.Equal(t, "", rec[FieldLanguages])
	assert.Equal(t, "6+", rec[FieldCurrentVAs])
	assert.Equal(t, 100, rec[FieldLeadScore])
	assert.Equal(t, "Hot", rec[FieldQualification])
	assert.Equal(t, PriorityImmediate, rec[FieldFollowUpPriority])
	assert.Equal(t, ActionScheduleDemo, rec[FieldNextAction])
	assert.Equal(t, "New Lead", rec[FieldStatus])
	assert.Equal(t, "No", rec[FieldDuplicateFlag])
	assert.Equal(t, "Qualified", rec[FieldLeadStatus])
	assert.Equal(t, "Assessment Form", rec[FieldLeadSourcePage])
	assert.Equal(t, "2024-05-01T12:00:00.000Z", rec[FieldCreatedAt])
	assert.Equal(t, "2024-05-01T14:00:00.000Z", rec[FieldFollowUpDate])
	assert.Equal(t, fixedClock.UnixMilli(), rec[FieldProcessingTime])
	assert.Equal(t, "masked", rec[FieldSubmissionIP])

	roi := scoring.CalculateROI(6)
	assert.Equal(t, roi.MonthlySavings, rec[FieldMonthlySavings])
	assert.InDelta(t, float64(roi.ROIPercentage)/100, rec[FieldROIPercentage], 1e-9)
	assert.Equal(t,
		"Lead Score: 100/100 | Qualification: Hot | ROI: 1709% | Submitted: 2024-05-01T12:00:00.000Z",
		rec[FieldNotes])
}

func TestToExternalRecordColdDuplicate(t *testing.T) {
	rec := mapLead(coldLead(), true)

	assert.Equal(t, "Duplicate", rec[FieldStatus])
	assert.Equal(t, "Yes", rec[FieldDuplicateFlag])
	assert.Equal(t, "Unqualified", rec[FieldLeadStatus])
	assert.Equal(t, "Cold", rec[FieldQualification])
	assert.Equal(t, PriorityLow, rec[FieldFollowUpPriority])
	assert.Equal(t, ActionNurture, rec[FieldNextAction])
	assert.Equal(t, 0, rec[FieldMonthlySavings])
	assert.Equal(t, "2024-05-02T12:00:00.000Z", rec[FieldFollowUpDate])
	assert.Equal(t, "", rec[FieldWebsite])
}

func TestToExternalRecordDeterministic(t *testing.T) {
	a, err := json.Marshal(mapLead(hotLead(), false))
	require.NoError(t, err)
	b, err := json.Marshal(mapLead(hotLead(), false))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestToExternalRecordCoversWrittenFields(t *testing.T) {
	rec := mapLead(coldLead(), false)
	written := WrittenFields()
	assert.Len(t, rec, len(written))
	for _, name := range written {
		_, ok := rec[name]
		assert.True(t, ok, name)
	}
}

func TestExpectedFieldsIncludesCRMColumns(t *testing.T) {
	expected := ExpectedFields()
	assert.Contains(t, expected, "Assignee")
	assert.Contains(t, expected, FieldEmail)
	assert.Len(t, expected, len(WrittenFields())+len(crmOnlyFields))
}

func TestFollowUpPriority(t *testing.T) {
	tests := []struct {
		score    int
		timeline string
		want     string
	}{
		{95, "", PriorityImmediate},
		{80, "6-12 months", PriorityImmediate},
		{70, "ASAP - within 30 days", PriorityHigh},
		{60, "1-3 months", PriorityMedium},
		{59, "ASAP - within 30 days", PriorityLow},
		{0, "", PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FollowUpPriority(tt.score, tt.timeline), "score=%d timeline=%q", tt.score, tt.timeline)
	}
}

func TestNextAction(t *testing.T) {
	tests := []struct {
		score int
		demo  string
		want  string
	}{
		{85, "", ActionScheduleDemo},
		{65, "This week", ActionSendProposal},
		{40, "Next month", ActionFollowUpDemo},
		{40, "Not ready for demo", ActionNurture},
		{40, "  ", ActionNurture},
	}
	for _, tt := range tests {
		got := NextAction(&LeadRecord{PreferredDemo: tt.demo}, tt.score)
		assert.Equal(t, tt.want, got, "score=%d demo=%q", tt.score, tt.demo)
	}
}
