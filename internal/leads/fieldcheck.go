package leads

import (
	"fmt"

	"github.com/wolfman30/assessment-api/internal/airtable"
)

// FieldSummary counts the schema comparison.
type FieldSummary struct {
	TotalExpected int `json:"totalExpected"`
	TotalActual   int `json:"totalActual"`
	Matching      int `json:"matching"`
	Missing       int `json:"missing"`
	Extra         int `json:"extra"`
}

// FieldLists names the columns in each bucket.
type FieldLists struct {
	Matching []string `json:"matching"`
	Missing  []string `json:"missing"`
	Extra    []string `json:"extra"`
}

// Recommendation is one suggested schema fix.
type Recommendation struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	Fields  []string              `json:"fields,omitempty"`
	Matches []airtable.Suggestion `json:"matches,omitempty"`
}

// FieldReport compares the columns the service writes with the live table.
type FieldReport struct {
	Success         bool              `json:"success"`
	Summary         FieldSummary      `json:"summary"`
	Fields          FieldLists        `json:"fields"`
	FieldTypes      map[string]string `json:"fieldTypes"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// CheckFields diffs ExpectedFields against a table schema. The report is
// successful when no expected column is missing; extra columns are fine.
func CheckFields(table *airtable.Table) FieldReport {
	expected := ExpectedFields()
	actual := table.FieldNames()
	diff := airtable.DiffFields(expected, actual)

	types := make(map[string]string, len(table.Fields))
	for _, f := range table.Fields {
		types[f.Name] = f.Type
	}

	report := FieldReport{
		Success: len(diff.Missing) == 0,
		Summary: FieldSummary{
			TotalExpected: len(expected),
			TotalActual:   len(actual),
			Matching:      len(diff.Matching),
			Missing:       len(diff.Missing),
			Extra:         len(diff.Extra),
		},
		Fields:          FieldLists{Matching: diff.Matching, Missing: diff.Missing, Extra: diff.Extra},
		FieldTypes:      types,
		Recommendations: []Recommendation{},
	}
	if n := len(diff.Missing); n > 0 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:    "missing_fields",
			Message: fmt.Sprintf("Add %d missing fields to your Airtable base", n),
			Fields:  diff.Missing,
		})
	}
	if n := len(diff.Extra); n > 0 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:    "extra_fields",
			Message: fmt.Sprintf("%d fields exist in Airtable but are not used by the form", n),
			Fields:  diff.Extra,
		})
	}
	if len(diff.Suggestions) > 0 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:    "potential_matches",
			Message: "Potential field name mismatches detected",
			Matches: diff.Suggestions,
		})
	}
	return report
}
