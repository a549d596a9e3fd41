package scheme

import (
	"net/url"
	"strings"
)

// Type values are kept in English regardless of the requested language; the UI filters on them.
const (
	TypeCentral = "Central"
	TypeState   = "State"
)

const (
	AllStates     = "All States"
	NotAvailable  = "N/A"
	DeadlineOpen  = "Open"
	MinUsefulness = 0
	MaxUsefulness = 100
)

// Record is one government scheme as described by the model or the fallback catalog.
type Record struct {
	Name               string   `json:"name" prompt_desc:"scheme name, copied verbatim from the requested list"`
	Type               string   `json:"type" prompt_type:"\"Central\" | \"State\"" prompt_desc:"always the English literal Central or State"`
	State              string   `json:"state" prompt_desc:"state the scheme applies to, or All States"`
	CategoryTags       []string `json:"categoryTags" prompt_desc:"short labels such as Education, Health, Agriculture"`
	Description        string   `json:"description" prompt_desc:"one or two sentence summary"`
	EligibilitySummary []string `json:"eligibilitySummary" prompt_desc:"bullet list of eligibility criteria"`
	RequiredDocuments  []string `json:"requiredDocuments" prompt_desc:"documents needed to apply"`
	ApplicationSteps   []string `json:"applicationSteps" prompt_desc:"ordered steps to apply"`
	Benefits           []string `json:"benefits,omitempty" prompt:"optional" prompt_desc:"what the beneficiary receives"`
	ApplicationURL     string   `json:"application_url,omitempty" prompt:"optional" prompt_desc:"official application URL or N/A"`
	Deadline           string   `json:"deadline,omitempty" prompt:"optional" prompt_desc:"ISO date (YYYY-MM-DD), Open, or N/A"`
	UsefulnessScore    int      `json:"usefulnessScore" prompt_desc:"relevance to this user from 0 to 100"`
}

// Normalize repairs a record decoded from untrusted model output. The returned record always
// carries a canonical Type, a score within range and an application URL that is either absent,
// N/A or an absolute http(s) URL.
func (r Record) Normalize() Record {
	out := r
	out.Name = strings.TrimSpace(r.Name)
	out.State = strings.TrimSpace(r.State)
	out.Description = strings.TrimSpace(r.Description)
	out.Type = CanonicalType(r.Type, out.State)
	out.CategoryTags = trimList(r.CategoryTags)
	out.EligibilitySummary = trimList(r.EligibilitySummary)
	out.RequiredDocuments = trimList(r.RequiredDocuments)
	out.ApplicationSteps = trimList(r.ApplicationSteps)
	if r.Benefits != nil {
		out.Benefits = trimList(r.Benefits)
	}
	out.ApplicationURL = normalizeURL(r.ApplicationURL)
	out.Deadline = strings.TrimSpace(r.Deadline)
	out.UsefulnessScore = clamp(r.UsefulnessScore, MinUsefulness, MaxUsefulness)
	return out
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.CategoryTags = cloneStrings(r.CategoryTags)
	out.EligibilitySummary = cloneStrings(r.EligibilitySummary)
	out.RequiredDocuments = cloneStrings(r.RequiredDocuments)
	out.ApplicationSteps = cloneStrings(r.ApplicationSteps)
	out.Benefits = cloneStrings(r.Benefits)
	return out
}

// CanonicalType maps case or whitespace variants of Central/State onto the canonical literal.
// Any other value falls back to Central for nationwide schemes and State otherwise.
func CanonicalType(raw, state string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "central":
		return TypeCentral
	case "state":
		return TypeState
	}
	s := strings.TrimSpace(state)
	if s == "" || strings.EqualFold(s, AllStates) {
		return TypeCentral
	}
	return TypeState
}

// ValidType reports whether t is one of the two canonical literals.
func ValidType(t string) bool {
	return t == TypeCentral || t == TypeState
}

func normalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.EqualFold(s, NotAvailable) {
		return NotAvailable
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NotAvailable
	}
	return s
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
