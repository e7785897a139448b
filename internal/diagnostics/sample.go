package diagnostics

import "github.com/wolfman30/assessment-api/internal/leads"

// SampleLead is a complete, high-intent submission used by the self-test.
func SampleLead() *leads.LeadRecord {
	return &leads.LeadRecord{
		FullName:    "John Smith",
		JobTitle:    "CEO",
		Email:       "john.smith@testcompany.com",
		Phone:       "+1-555-123-4567",
		CompanyName: "Test Company Inc",
		Website:     "https://testcompany.com",

		Industry:          "Technology",
		AnnualRevenue:     "Over $2M",
		NumberOfEmployees: "100+",
		Country:           "United States",

		NumberOfCurrentVAs:         "5",
		MonthlyCostOfCurrentStaff:  "$8,000-10,000/month",
		MonthlyCallVolume:          "1000+",
		CurrentCallAnswerRate:      "Under 30%",
		RevenueLostFromMissedCalls: "Over $10,000/month",

		CurrentChallenge:     "High volume of missed calls",
		WhatsDrivingThisNeed: "Customer complaints about poor service",
		IfYouDontSolveThis:   "Will lose major clients",
		CurrentPriorityLevel: "Top 3 business priority",

		AIServicesInterest:    leads.List("24/7 Phone Answering", "Lead Qualification", "Appointment Scheduling"),
		PrimaryUseCase:        "Customer service and lead generation",
		PricingTierInterest:   "Professional ($597/month)",
		MultiLanguageInterest: "Yes",
		LanguagesNeeded:       leads.List("English", "Spanish"),

		CurrentBudget:     "$5,000+/month",
		BudgetFlexibility: "Flexible - ROI focused",
		Timeline:          "ASAP - within 30 days",
		DecisionRole:      "Final decision maker",

		CurrentCRMDatabase:              "Salesforce",
		IntegrationRequirements:         "CRM integration, calendar sync",
		TechnologyImplementationHandler: "Internal IT team",

		StakeholdersInvolved:   leads.List("CEO", "CTO", "Sales Director"),
		BudgetAuthority:        "Yes - full authority",
		ImplementationApprover: "CEO",
		DecisionTimeline:       "Within 2 weeks",
		ApprovalProcess:        "Executive decision",

		SolutionsEvaluated:   leads.List("Ruby Receptionists", "AnswerConnect", "PATLive"),
		CurrentProvider:      "Ruby Receptionists",
		PreviousAIExperience: "Limited experience",
		CompetitorConcerns:   "Cost and reliability",
		Differentiators:      leads.List("24/7 availability", "AI technology", "Cost savings"),

		PreferredDemo:       "Live demo with our team",
		DemoTimeline:        "This week",
		ReferenceInterest:   "Yes",
		FollowUpPreference:  "Phone call",
		AdditionalQuestions: "How quickly can we get started?",
		ReadyToStart:        "Yes",

		LeadSourcePage: "Assessment Form Test",
	}
}
