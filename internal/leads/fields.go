package leads

// Airtable column names written for every submission.
const (
	FieldName                  = "Name"
	FieldJobTitle              = "JobTitle"
	FieldEmail                 = "Email"
	FieldPhone                 = "Phone Number"
	FieldCompany               = "Company"
	FieldWebsite               = "Website"
	FieldIndustry              = "Industry"
	FieldAnnualRevenue         = "Annual Revenue"
	FieldEmployees             = "Employees"
	FieldCountry               = "Country"
	FieldCurrentVAs            = "Number of Current VAs"
	FieldCurrentStaffCost      = "Current Cost of Staff/Answering Service"
	FieldMonthlyCallVolume     = "Monthly Call Volume"
	FieldCallAnswerRate        = "Current Call Answer Rate"
	FieldRevenueLost           = "Revenue Lost from Missed Calls"
	FieldCurrentChallenge      = "Current Challenge"
	FieldDrivingNeed           = "What's Driving This Need Right Now"
	FieldIfUnsolved            = "If You Don't Solve This in Next 3 Months"
	FieldPriorityLevel         = "Current Priority Level"
	FieldServicesInterested    = "Services Interested"
	FieldPrimaryUseCase        = "Primary Use Case"
	FieldPricingTier           = "Pricing_Tier_Interest"
	FieldMultiLanguage         = "Multi-language Support Interest"
	FieldLanguages             = "If yes, please specify language(s)"
	FieldCurrentBudget         = "Current Budget"
	FieldBudgetFlexibility     = "Budget Flexibility"
	FieldTimeline              = "Timeline"
	FieldDecisionRole          = "Decision_Role"
	FieldCRM                   = "Current CRM/Database"
	FieldIntegrations          = "Integration Requirements"
	FieldImplementationHandler = "Technology Implementation Handler"
	FieldStakeholders          = "Stakeholders"
	FieldBudgetAuthority       = "Budget Authority"
	FieldImplementationApprove = "Implementation Approver"
	FieldDecisionTimeline      = "Decision Timeline"
	FieldApprovalProcess       = "Approval Process"
	FieldSolutionsEvaluated    = "Other AI Solutions You've Evaluated"
	FieldCurrentProvider       = "Current Provider"
	FieldAIExperience          = "AI Experience"
	FieldConcerns              = "Concerns"
	FieldDifferentiators       = "Differentiators"
	FieldPreferredNextStep     = "Preferred Next Step"
	FieldDemoUrgency           = "Demo Scheduling Urgency"
	FieldReferenceInterest     = "Interest in Client Reference"
	FieldFollowUp              = "Follow Up"
	FieldAdditionalInfo        = "Additional Information"
	FieldReadyToStart          = "Ready To Start"

	FieldLeadScore          = "Lead Score"
	FieldMonthlySavings     = "Monthly_Savings"
	FieldAnnualSavings      = "Annual_Savings"
	FieldROIPercentage      = "ROI_Percentage"
	FieldQualification      = "Qualification_Level"
	FieldFollowUpPriority   = "Follow_up_Priority"
	FieldNextAction         = "Next_Action"
	FieldStatus             = "Status"
	FieldLeadStatus         = "Lead_Status"
	FieldLeadSourcePage     = "Lead Source Page"
	FieldCreatedAt          = "Created At"
	FieldFollowUpDate       = "Follow-up Date"
	FieldSubmissionIP       = "Submission_IP"
	FieldFormVersion        = "Form_Version"
	FieldProcessingTime     = "Processing_Time"
	FieldDuplicateFlag      = "Duplicate_Flag"
	FieldNotes              = "Notes"
	defaultLeadSourcePage   = "Assessment Form"
	formVersion             = "2.0"
	maskedSubmissionAddress = "masked"
)

// Columns the CRM base carries for manual follow-up work. The service never
// writes them but the schema check expects them to exist.
var crmOnlyFields = []string{
	"State/Province",
	"City",
	"Zip Code",
	"Best Time for Demo/Call",
	"Who Will Attend the Demo",
	"Preferred Demo Format",
	"Assignee",
	"Attachments",
	"Attachment Summary",
	"Demo Requested",
	"Demo Scheduled Date",
	"Demo Link",
	"How Did You Hear About Us",
}

// WrittenFields lists, in order, every column ToExternalRecord populates.
func WrittenFields() []string {
	names := make([]string, 0, len(formFields)+len(computedFields))
	for _, f := range formFields {
		names = append(names, f.column)
	}
	return append(names, computedFields...)
}

// ExpectedFields is the full schema the leads table should have.
func ExpectedFields() []string {
	return append(WrittenFields(), crmOnlyFields...)
}

var computedFields = []string{
	FieldLeadScore,
	FieldMonthlySavings,
	FieldAnnualSavings,
	FieldROIPercentage,
	FieldQualification,
	FieldFollowUpPriority,
	FieldNextAction,
	FieldStatus,
	FieldLeadStatus,
	FieldLeadSourcePage,
	FieldCreatedAt,
	FieldFollowUpDate,
	FieldSubmissionIP,
	FieldFormVersion,
	FieldProcessingTime,
	FieldDuplicateFlag,
	FieldNotes,
}

// formFields maps each answered form field 1:1 onto its column.
var formFields = []struct {
	column string
	value  func(*LeadRecord) string
}{
	{FieldName, func(r *LeadRecord) string { return r.FullName }},
	{FieldJobTitle, func(r *LeadRecord) string { return r.JobTitle }},
	{FieldEmail, func(r *LeadRecord) string { return r.Email }},
	{FieldPhone, func(r *LeadRecord) string { return r.Phone }},
	{FieldCompany, func(r *LeadRecord) string { return r.CompanyName }},
	{FieldWebsite, func(r *LeadRecord) string { return r.Website }},
	{FieldIndustry, func(r *LeadRecord) string { return r.Industry }},
	{FieldAnnualRevenue, func(r *LeadRecord) string { return r.AnnualRevenue }},
	{FieldEmployees, func(r *LeadRecord) string { return r.NumberOfEmployees }},
	{FieldCountry, func(r *LeadRecord) string { return r.Country }},
	{FieldCurrentVAs, func(r *LeadRecord) string { return r.NumberOfCurrentVAs }},
	{FieldCurrentStaffCost, func(r *LeadRecord) string { return r.MonthlyCostOfCurrentStaff }},
	{FieldMonthlyCallVolume, func(r *LeadRecord) string { return r.MonthlyCallVolume }},
	{FieldCallAnswerRate, func(r *LeadRecord) string { return r.CurrentCallAnswerRate }},
	{FieldRevenueLost, func(r *LeadRecord) string { return r.RevenueLostFromMissedCalls }},
	{FieldCurrentChallenge, func(r *LeadRecord) string { return r.CurrentChallenge }},
	{FieldDrivingNeed, func(r *LeadRecord) string { return r.WhatsDrivingThisNeed }},
	{FieldIfUnsolved, func(r *LeadRecord) string { return r.IfYouDontSolveThis }},
	{FieldPriorityLevel, func(r *LeadRecord) string { return r.CurrentPriorityLevel }},
	{FieldServicesInterested, func(r *LeadRecord) string { return r.AIServicesInterest.Join() }},
	{FieldPrimaryUseCase, func(r *LeadRecord) string { return r.PrimaryUseCase }},
	{FieldPricingTier, func(r *LeadRecord) string { return r.PricingTierInterest }},
	{FieldMultiLanguage, func(r *LeadRecord) string { return r.MultiLanguageInterest }},
	{FieldLanguages, func(r *LeadRecord) string { return r.LanguagesNeeded.Join() }},
	{FieldCurrentBudget, func(r *LeadRecord) string { return r.CurrentBudget }},
	{FieldBudgetFlexibility, func(r *LeadRecord) string { return r.BudgetFlexibility }},
	{FieldTimeline, func(r *LeadRecord) string { return r.Timeline }},
	{FieldDecisionRole, func(r *LeadRecord) string { return r.DecisionRole }},
	{FieldCRM, func(r *LeadRecord) string { return r.CurrentCRMDatabase }},
	{FieldIntegrations, func(r *LeadRecord) string { return r.IntegrationRequirements }},
	{FieldImplementationHandler, func(r *LeadRecord) string { return r.TechnologyImplementationHandler }},
	{FieldStakeholders, func(r *LeadRecord) string { return r.StakeholdersInvolved.Join() }},
	{FieldBudgetAuthority, func(r *LeadRecord) string { return r.BudgetAuthority }},
	{FieldImplementationApprove, func(r *LeadRecord) string { return r.ImplementationApprover }},
	{FieldDecisionTimeline, func(r *LeadRecord) string { return r.DecisionTimeline }},
	{FieldApprovalProcess, func(r *LeadRecord) string { return r.ApprovalProcess }},
	{FieldSolutionsEvaluated, func(r *LeadRecord) string { return r.SolutionsEvaluated.Join() }},
	{FieldCurrentProvider, func(r *LeadRecord) string { return r.CurrentProvider }},
	{FieldAIExperience, func(r *LeadRecord) string { return r.PreviousAIExperience }},
	{FieldConcerns, func(r *LeadRecord) string { return r.CompetitorConcerns }},
	{FieldDifferentiators, func(r *LeadRecord) string { return r.Differentiators.Join() }},
	{FieldPreferredNextStep, func(r *LeadRecord) string { return r.PreferredDemo }},
	{FieldDemoUrgency, func(r *LeadRecord) string { return r.DemoTimeline }},
	{FieldReferenceInterest, func(r *LeadRecord) string { return r.ReferenceInterest }},
	{FieldFollowUp, func(r *LeadRecord) string { return r.FollowUpPreference }},
	{FieldAdditionalInfo, func(r *LeadRecord) string { return r.AdditionalQuestions }},
	{FieldReadyToStart, func(r *LeadRecord) string { return r.ReadyToStart }},
}
