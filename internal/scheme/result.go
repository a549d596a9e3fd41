package scheme

import "strings"

// NameList is the output of name discovery. Not persisted.
type NameList struct {
	SchemeNames   []string `json:"schemeNames"`
	GeneralAdvice []string `json:"generalAdvice"`
}

// Recommendation is the final answer to a recommendation request.
// Both slices are non-nil after EnsureSlices.
type Recommendation struct {
	Schemes       []Record `json:"schemes"`
	GeneralAdvice []string `json:"generalAdvice"`
}

// EnsureSlices replaces nil slices with empty ones so they encode as [] rather than null.
func (r Recommendation) EnsureSlices() Recommendation {
	if r.Schemes == nil {
		r.Schemes = []Record{}
	}
	if r.GeneralAdvice == nil {
		r.GeneralAdvice = []string{}
	}
	return r
}

// SearchResult is the answer to a keyword search.
type SearchResult struct {
	Schemes []Record `json:"schemes"`
}

// Slug is the identifier a saved scheme is stored under: lower-cased with whitespace
// runs collapsed into a single dash.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
