// Package dashboard holds the resume list: the fetched full set, its facets,
// the active single-field filter and the detail-view selection.
package dashboard

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-parser-web/internal/types"
)

// Facet is a field the resume list can be filtered on.
type Facet string

const (
	FacetNone          Facet = ""
	FacetCandidateName Facet = "candidate_name"
	FacetEmail         Facet = "email_id"
)

// ParseFacet maps a request value to a Facet. Unknown values mean no facet.
func ParseFacet(s string) Facet {
	switch Facet(s) {
	case FacetCandidateName, FacetEmail:
		return Facet(s)
	default:
		return FacetNone
	}
}

// Label is the human-readable facet name.
func (f Facet) Label() string {
	switch f {
	case FacetCandidateName:
		return "Candidate Name"
	case FacetEmail:
		return "Email ID"
	default:
		return "Show All"
	}
}

// value returns the field of r selected by the facet.
func (f Facet) value(r *types.ResumeRecord) string {
	switch f {
	case FacetCandidateName:
		return r.CandidateName
	case FacetEmail:
		return r.EmailID
	default:
		return ""
	}
}

// Facets are the distinct values offered for each filterable field.
type Facets struct {
	CandidateNames []string
	Emails         []string
}

// DeriveFacets collects distinct, non-empty candidate names and emails from
// records, each sorted lexicographically.
func DeriveFacets(records []types.ResumeRecord) Facets {
	return Facets{
		CandidateNames: distinct(records, FacetCandidateName),
		Emails:         distinct(records, FacetEmail),
	}
}

// For returns the values offered for facet f.
func (fs Facets) For(f Facet) []string {
	switch f {
	case FacetCandidateName:
		return fs.CandidateNames
	case FacetEmail:
		return fs.Emails
	default:
		return nil
	}
}

func distinct(records []types.ResumeRecord, f Facet) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		v := f.value(&records[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter returns the records of full whose facet field contains value,
// ignoring case. An empty value, or no facet, yields full itself.
// full is never modified.
func Filter(full []types.ResumeRecord, f Facet, value string) []types.ResumeRecord {
	if value == "" || f == FacetNone {
		return full
	}

	needle := strings.ToLower(value)
	out := make([]types.ResumeRecord, 0, len(full))
	for i := range full {
		if strings.Contains(strings.ToLower(f.value(&full[i])), needle) {
			out = append(out, full[i])
		}
	}
	return out
}
