package notify

// Lead is the slice of a submission that notifications need.
type Lead struct {
	FullName       string
	Email          string
	Phone          string
	CompanyName    string
	Industry       string
	Timeline       string
	DecisionRole   string
	Challenge      string
	Driver         string
	PriorityLevel  string
	Tier           string
	NextAction     string
	FollowUpAt     string
	LeadSourcePage string
}
