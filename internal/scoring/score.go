// Package scoring holds the lead score and ROI projection shared by the live
// preview and the authoritative submission path. Everything here is pure.
package scoring

import "strings"

// Tier is the coarse qualification bucket derived from a score.
type Tier string

const (
	TierHot  Tier = "Hot"
	TierWarm Tier = "Warm"
	TierCold Tier = "Cold"
)

const (
	HotThreshold  = 80
	WarmThreshold = 60

	MaxScore = 100
)

// Form values the scorer keys on.
const (
	TimelineASAP      = "ASAP - within 30 days"
	PriorityTopThree  = "Top 3 business priority"
	DecisionRoleFinal = "Final decision maker"
	AnswerRateUnder30 = "Under 30%"
)

// Inputs is the subset of an assessment that affects scoring.
type Inputs struct {
	DecisionRole      string
	StaffCount        int
	CallAnswerRate    string
	Timeline          string
	Budget            string
	AnnualRevenue     string
	Employees         string
	MonthlyCallVolume string
	PriorityLevel     string
	ServicesSelected  int
}

// Breakdown reports how many points each bucket contributed.
type Breakdown struct {
	Authority int `json:"authority"`
	Scale     int `json:"scale"`
	Pain      int `json:"pain"`
	Urgency   int `json:"urgency"`
	Budget    int `json:"budget"`
	Bonus     int `json:"bonus"`
}

// Total is the unclamped sum.
func (b Breakdown) Total() int {
	return b.Authority + b.Scale + b.Pain + b.Urgency + b.Budget + b.Bonus
}

// Result is a clamped score with its tier.
type Result struct {
	Score     int       `json:"score"`
	Tier      Tier      `json:"tier"`
	Breakdown Breakdown `json:"breakdown"`
}

var authorityPoints = map[string]int{
	DecisionRoleFinal:   30,
	"Strong influencer": 25,
	"Some input":        15,
	"IT/Technical role": 12,
	"Just researching":  8,
}

var painPoints = map[string]int{
	AnswerRateUnder30: 25,
	"30-50%":          20,
	"50-70%":          15,
	"70-90%":          8,
	"90%+":            3,
}

var urgencyPoints = map[string]int{
	TimelineASAP:  15,
	"1-3 months":  12,
	"3-6 months":  8,
	"6-12 months": 4,
}

var budgetPoints = map[string]int{
	"$5,000+/month":      10,
	"$2,000-5,000/month": 8,
	"$1,000-2,000/month": 6,
	"$500-1,000/month":   4,
}

const (
	defaultAuthority = 5
	defaultUrgency   = 2
	defaultBudget    = 2
)

// Score computes the lead score. Identical inputs always yield identical results.
func Score(in Inputs) Result {
	b := Breakdown{
		Authority: lookup(authorityPoints, in.DecisionRole, defaultAuthority),
		Scale:     scalePoints(in.StaffCount),
		Pain:      lookup(painPoints, in.CallAnswerRate, 0),
		Urgency:   lookup(urgencyPoints, in.Timeline, defaultUrgency),
		Budget:    lookup(budgetPoints, in.Budget, defaultBudget),
		Bonus:     bonusPoints(in),
	}
	score := clamp(b.Total(), 0, MaxScore)
	return Result{Score: score, Tier: TierFor(score), Breakdown: b}
}

// TierFor maps a score to its qualification tier.
func TierFor(score int) Tier {
	switch {
	case score >= HotThreshold:
		return TierHot
	case score >= WarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

func scalePoints(staff int) int {
	switch {
	case staff >= 6:
		return 20
	case staff >= 4:
		return 18
	case staff >= 3:
		return 15
	case staff >= 2:
		return 12
	case staff >= 1:
		return 8
	default:
		return 3
	}
}

func bonusPoints(in Inputs) int {
	bonus := 0
	in.AnnualRevenue = strings.TrimSpace(in.AnnualRevenue)
	in.Employees = strings.TrimSpace(in.Employees)
	in.MonthlyCallVolume = strings.TrimSpace(in.MonthlyCallVolume)
	in.PriorityLevel = strings.TrimSpace(in.PriorityLevel)
	if in.AnnualRevenue == "Over $2M" || in.AnnualRevenue == "$1M-2M" {
		bonus += 5
	}
	if in.Employees == "100+" || in.Employees == "51-100" {
		bonus += 3
	}
	if in.MonthlyCallVolume == "1000+" || in.MonthlyCallVolume == "500-1000" {
		bonus += 3
	}
	if in.PriorityLevel == PriorityTopThree {
		bonus += 5
	}
	if in.ServicesSelected >= 3 {
		bonus += 3
	}
	return bonus
}

// Form values arrive verbatim from select inputs, so only surrounding
// whitespace is forgiven.
func lookup(table map[string]int, key string, fallback int) int {
	if v, ok := table[strings.TrimSpace(key)]; ok {
		return v
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
