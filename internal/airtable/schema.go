package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Field is a column in the Airtable table schema.
type Field struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a table as reported by the metadata API.
type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// FieldNames returns the table's column names in schema order.
func (t *Table) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// TableNotFoundError means the base has no table with the configured name.
type TableNotFoundError struct {
	Name      string
	Available []string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("airtable: table %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// TableSchema fetches the configured table's columns from the metadata API.
func (c *Client) TableSchema(ctx context.Context) (*Table, error) {
	ctx, span := tracer.Start(ctx, "airtable.table_schema")
	defer span.End()

	status, body, err := c.do(ctx, http.MethodGet, "/v0/meta/bases/"+url.PathEscape(c.baseID)+"/tables", nil, nil)
	if err == nil && (status < 200 || status > 299) {
		err = decodeAPIError(status, body)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var parsed struct {
		Tables []Table `json:"tables"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("airtable: decode schema: %w", err)
	}
	available := make([]string, 0, len(parsed.Tables))
	for i := range parsed.Tables {
		if parsed.Tables[i].Name == c.table {
			return &parsed.Tables[i], nil
		}
		available = append(available, parsed.Tables[i].Name)
	}
	return nil, &TableNotFoundError{Name: c.table, Available: available}
}

// Suggestion pairs a missing expected column with similarly named actual ones.
type Suggestion struct {
	Expected   string   `json:"expected"`
	Candidates []string `json:"candidates"`
}

// FieldDiff compares the columns the service writes with the ones that exist.
type FieldDiff struct {
	Matching    []string     `json:"matching"`
	Missing     []string     `json:"missing"`
	Extra       []string     `json:"extra"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// DiffFields partitions expected and actual column names. Missing columns get
// suggestions from the extras whose lowercase name contains, or is contained
// in, the missing one.
func DiffFields(expected, actual []string) FieldDiff {
	actualSet := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		actualSet[name] = struct{}{}
	}
	expectedSet := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		expectedSet[name] = struct{}{}
	}

	diff := FieldDiff{Matching: []string{}, Missing: []string{}, Extra: []string{}}
	for _, name := range expected {
		if _, ok := actualSet[name]; ok {
			diff.Matching = append(diff.Matching, name)
		} else {
			diff.Missing = append(diff.Missing, name)
		}
	}
	for _, name := range actual {
		if _, ok := expectedSet[name]; !ok {
			diff.Extra = append(diff.Extra, name)
		}
	}

	for _, missing := range diff.Missing {
		lm := strings.ToLower(missing)
		var candidates []string
		for _, extra := range diff.Extra {
			le := strings.ToLower(extra)
			if strings.Contains(le, lm) || strings.Contains(lm, le) {
				candidates = append(candidates, extra)
			}
		}
		if len(candidates) > 0 {
			sort.Strings(candidates)
			diff.Suggestions = append(diff.Suggestions, Suggestion{Expected: missing, Candidates: candidates})
		}
	}
	return diff
}
