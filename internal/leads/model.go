package leads

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/wolfman30/assessment-api/internal/scoring"
)

// StringList is a multi-select answer. It remembers whether the key was sent
// and whether it was a JSON array, so a scalar is reported as a field error
// instead of failing the whole body.
type StringList struct {
	Values  []string
	Present bool
	IsArray bool
}

// List builds a present, array-shaped StringList.
func List(values ...string) StringList {
	if values == nil {
		values = []string{}
	}
	return StringList{Values: values, Present: true, IsArray: true}
}

func (s *StringList) UnmarshalJSON(data []byte) error {
	s.Present = true
	s.Values = nil
	s.IsArray = false

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	s.IsArray = true
	s.Values = make([]string, 0, len(raw))
	for _, item := range raw {
		var v string
		if err := json.Unmarshal(item, &v); err != nil {
			v = strings.TrimSpace(string(item))
		}
		s.Values = append(s.Values, v)
	}
	return nil
}

func (s StringList) MarshalJSON() ([]byte, error) {
	if s.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Values)
}

// Join renders the list as a single comma-separated string. Non-array input
// renders empty.
func (s StringList) Join() string {
	if !s.IsArray {
		return ""
	}
	return strings.Join(s.Values, ", ")
}

// Len counts selected values.
func (s StringList) Len() int {
	if !s.IsArray {
		return 0
	}
	return len(s.Values)
}

// LeadRecord is one assessment submission as sent by the form.
type LeadRecord struct {
	// Contact
	FullName    string `json:"fullName"`
	JobTitle    string `json:"jobTitle"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website,omitempty"`

	// Business profile
	Industry          string `json:"industry"`
	AnnualRevenue     string `json:"annualRevenue"`
	NumberOfEmployees string `json:"numberOfEmployees"`
	Country           string `json:"country"`

	// Current setup
	NumberOfCurrentVAs         string `json:"numberOfCurrentVAs"`
	MonthlyCostOfCurrentStaff  string `json:"monthlyCostOfCurrentStaff"`
	MonthlyCallVolume          string `json:"monthlyCallVolume"`
	CurrentCallAnswerRate      string `json:"currentCallAnswerRate"`
	RevenueLostFromMissedCalls string `json:"revenueLostFromMissedCalls"`

	// Pain points
	CurrentChallenge     string `json:"currentChallenge"`
	WhatsDrivingThisNeed string `json:"whatsDriveringThisNeed"`
	IfYouDontSolveThis   string `json:"ifYouDontSolveThis"`
	CurrentPriorityLevel string `json:"currentPriorityLevel"`

	// Services
	AIServicesInterest    StringList `json:"aiServicesInterest"`
	PrimaryUseCase        string     `json:"primaryUseCase"`
	PricingTierInterest   string     `json:"pricingTierInterest"`
	MultiLanguageInterest string     `json:"multiLanguageInterest"`
	LanguagesNeeded       StringList `json:"languagesNeeded"`

	// Budget and timeline
	CurrentBudget     string `json:"currentBudget"`
	BudgetFlexibility string `json:"budgetFlexibility"`
	Timeline          string `json:"timeline"`
	DecisionRole      string `json:"decisionRole"`

	// Technical setup
	CurrentCRMDatabase              string `json:"currentCRMDatabase"`
	IntegrationRequirements         string `json:"integrationRequirements"`
	TechnologyImplementationHandler string `json:"technologyImplementationHandler"`

	// Decision process
	StakeholdersInvolved   StringList `json:"stakeholdersInvolved"`
	BudgetAuthority        string     `json:"budgetAuthority"`
	ImplementationApprover string     `json:"implementationApprover"`
	DecisionTimeline       string     `json:"decisionTimeline"`
	ApprovalProcess        string     `json:"approvalProcess"`

	// Competitive landscape
	SolutionsEvaluated   StringList `json:"solutionsEvaluated"`
	CurrentProvider      string     `json:"currentProvider"`
	PreviousAIExperience string     `json:"previousAIExperience"`
	CompetitorConcerns   string     `json:"competitorConcerns"`
	Differentiators      StringList `json:"differentiators"`

	// Next steps
	PreferredDemo       string `json:"preferredDemo"`
	DemoTimeline        string `json:"demoTimeline"`
	ReferenceInterest   string `json:"referenceInterest"`
	FollowUpPreference  string `json:"followUpPreference"`
	AdditionalQuestions string `json:"additionalQuestions"`
	ReadyToStart        string `json:"readyToStart"`

	// System
	LeadSourcePage string `json:"leadSourcePage,omitempty"`
	SubmittedAt    string `json:"submittedAt,omitempty"`
}

// StaffCount parses the current VA count; anything unusable counts as zero.
func (r *LeadRecord) StaffCount() int {
	return scoring.ParseStaffCount(r.NumberOfCurrentVAs)
}

// ScoringInputs extracts the answers the scorer looks at.
func (r *LeadRecord) ScoringInputs() scoring.Inputs {
	return scoring.Inputs{
		DecisionRole:      r.DecisionRole,
		StaffCount:        r.StaffCount(),
		CallAnswerRate:    r.CurrentCallAnswerRate,
		Timeline:          r.Timeline,
		Budget:            r.CurrentBudget,
		AnnualRevenue:     r.AnnualRevenue,
		Employees:         r.NumberOfEmployees,
		MonthlyCallVolume: r.MonthlyCallVolume,
		PriorityLevel:     r.CurrentPriorityLevel,
		ServicesSelected:  r.AIServicesInterest.Len(),
	}
}
