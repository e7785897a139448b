package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/assessment-api/internal/airtable"
)

func tableWith(names ...string) *airtable.Table {
	t := &airtable.Table{ID: "tblLeads", Name: "Leads"}
	for i, n := range names {
		t.Fields = append(t.Fields, airtable.Field{ID: "fld" + string(rune('a'+i%26)), Name: n, Type: "singleLineText"})
	}
	return t
}

func TestCheckFieldsComplete(t *testing.T) {
	report := CheckFields(tableWith(append(ExpectedFields(), "Owner")...))

	assert.True(t, report.Success)
	assert.Equal(t, len(ExpectedFields()), report.Summary.Matching)
	assert.Equal(t, 0, report.Summary.Missing)
	assert.Equal(t, []string{"Owner"}, report.Fields.Extra)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "extra_fields", report.Recommendations[0].Type)
	assert.Equal(t, "1 fields exist in Airtable but are not used by the form", report.Recommendations[0].Message)
}

func TestCheckFieldsMissingWithSuggestions(t *testing.T) {
	report := CheckFields(tableWith("Name", "Email", "Phone", "Lead Score"))

	assert.False(t, report.Success)
	assert.Equal(t, 3, report.Summary.Matching)
	assert.Equal(t, len(ExpectedFields())-3, report.Summary.Missing)
	assert.Equal(t, "singleLineText", report.FieldTypes["Phone"])

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, "missing_fields", report.Recommendations[0].Type)
	assert.Equal(t, "potential_matches", report.Recommendations[2].Type)
	assert.Contains(t, report.Recommendations[2].Matches, airtable.Suggestion{Expected: FieldPhone, Candidates: []string{"Phone"}})
}
