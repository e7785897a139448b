package scoring

import (
	"math"
	"strings"
)

const (
	// CostPerVA is the assumed monthly cost of one human assistant.
	CostPerVA = 1800
	// SolutionMonthlyCost is the flat monthly price of the automated service.
	SolutionMonthlyCost = 597
)

// ROI is the cost projection for replacing the current staff.
type ROI struct {
	MonthlyVACost  int `json:"monthlyVACost"`
	AICost         int `json:"aiCost"`
	MonthlySavings int `json:"monthlySavings"`
	AnnualSavings  int `json:"annualSavings"`
	ROIPercentage  int `json:"roiPercentage"`
	NumVAs         int `json:"numVAs"`
}

// CalculateROI projects savings for staffCount assistants. Negative counts are
// treated as zero, so every input yields a valid result.
func CalculateROI(staffCount int) ROI {
	staffCount = max(0, staffCount)
	current := staffCount * CostPerVA
	savings := max(0, current-SolutionMonthlyCost)

	percent := 0
	if current > 0 {
		percent = int(math.Round(float64(savings) / SolutionMonthlyCost * 100))
	}

	return ROI{
		MonthlyVACost:  current,
		AICost:         SolutionMonthlyCost,
		MonthlySavings: savings,
		AnnualSavings:  savings * 12,
		ROIPercentage:  percent,
		NumVAs:         staffCount,
	}
}

// ParseStaffCount reads the leading integer of a staff-count answer such as
// "4" or "6+". Anything unparsable or negative becomes 0.
func ParseStaffCount(raw string) int {
	s := strings.TrimSpace(raw)
	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > (math.MaxInt32-9)/10 {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 || negative {
		return 0
	}
	return n
}
