package leads

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^[+]?[1-9]\d{0,15}$`)
	websitePattern = regexp.MustCompile(`^https?://.+`)
	phoneNoise     = strings.NewReplacer(" ", "", "\t", "", "(", "", ")", "", "-", "")
)

// FieldError is one rule violation on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every violation found in a record.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "leads: validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one violation.
func (e FieldErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var requiredFields = []struct {
	field   string
	message string
	value   func(*LeadRecord) string
}{
	{"fullName", "Full name is required", func(r *LeadRecord) string { return r.FullName }},
	{"email", "Email is required", func(r *LeadRecord) string { return r.Email }},
	{"phone", "Phone number is required", func(r *LeadRecord) string { return r.Phone }},
	{"companyName", "Company name is required", func(r *LeadRecord) string { return r.CompanyName }},
	{"industry", "Industry is required", func(r *LeadRecord) string { return r.Industry }},
	{"decisionRole", "Decision role is required", func(r *LeadRecord) string { return r.DecisionRole }},
	{"timeline", "Timeline is required", func(r *LeadRecord) string { return r.Timeline }},
}

var optionalLists = []struct {
	field string
	label string
	value func(*LeadRecord) StringList
}{
	{"languagesNeeded", "Languages needed", func(r *LeadRecord) StringList { return r.LanguagesNeeded }},
	{"stakeholdersInvolved", "Stakeholders involved", func(r *LeadRecord) StringList { return r.StakeholdersInvolved }},
	{"solutionsEvaluated", "Solutions evaluated", func(r *LeadRecord) StringList { return r.SolutionsEvaluated }},
	{"differentiators", "Differentiators", func(r *LeadRecord) StringList { return r.Differentiators }},
}

// Validate runs every rule and returns all violations. A nil result means the
// record is valid.
func Validate(r *LeadRecord) FieldErrors {
	if r == nil {
		r = &LeadRecord{}
	}
	var errs FieldErrors
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	for _, req := range requiredFields {
		if strings.TrimSpace(req.value(r)) == "" {
			add(req.field, req.message)
			continue
		}
		switch req.field {
		case "email":
			if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
				add("email", "Please enter a valid email address")
			}
		case "phone":
			if !phonePattern.MatchString(phoneNoise.Replace(strings.TrimSpace(r.Phone))) {
				add("phone", "Please enter a valid phone number")
			}
		}
	}

	if w := strings.TrimSpace(r.Website); w != "" && !websitePattern.MatchString(w) {
		add("website", "Please enter a valid website URL")
	}

	if !r.AIServicesInterest.IsArray {
		add("aiServicesInterest", "AI services interest must be an array")
	}
	for _, l := range optionalLists {
		if v := l.value(r); v.Present && !v.IsArray {
			add(l.field, fmt.Sprintf("%s must be an array", l.label))
		}
	}

	return errs
}
