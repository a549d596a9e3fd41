package scheme

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Language is the two-letter code of the language human-readable output is requested in.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
)

// ParseLanguage maps any value other than "hi" to English.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LangHindi)) {
		return LangHindi
	}
	return LangEnglish
}

func (l Language) IsHindi() bool { return l == LangHindi }

// Age is a numeric string. Clients sometimes send a JSON number, so both are accepted.
type Age string

func (a *Age) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("age: %w", err)
	}
	*a = Age(n.String())
	return nil
}

// Years returns the age as an integer when it is set and numeric.
func (a Age) Years() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(a)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// UserProfile is the demographic input of one recommendation request.
type UserProfile struct {
	UserID            string   `json:"userId,omitempty"`
	Name              string   `json:"name,omitempty"`
	Age               Age      `json:"age"`
	Gender            string   `json:"gender"`
	State             string   `json:"state"`
	City              string   `json:"city"`
	AnnualIncome      string   `json:"annualIncome"`
	Category          string   `json:"category"`
	Occupation        string   `json:"occupation"`
	EducationLevel    string   `json:"educationLevel"`
	SpecialConditions []string `json:"specialConditions,omitempty"`
	Language          string   `json:"language,omitempty"`
}

func (p UserProfile) Lang() Language { return ParseLanguage(p.Language) }

// Validate rejects profiles the prompt builder cannot render meaningfully.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(string(p.Age)) != "" {
		n, ok := p.Age.Years()
		if !ok {
			return fmt.Errorf("age must be numeric, got %q", string(p.Age))
		}
		if n < 0 || n > 150 {
			return fmt.Errorf("age out of range: %d", n)
		}
	}
	return nil
}

// Normalized returns a copy with trimmed fields and blank special conditions removed.
func (p UserProfile) Normalized() UserProfile {
	out := p
	out.UserID = strings.TrimSpace(p.UserID)
	out.Name = strings.TrimSpace(p.Name)
	out.Age = Age(strings.TrimSpace(string(p.Age)))
	out.Gender = strings.TrimSpace(p.Gender)
	out.State = strings.TrimSpace(p.State)
	out.City = strings.TrimSpace(p.City)
	out.AnnualIncome = strings.TrimSpace(p.AnnualIncome)
	out.Category = strings.TrimSpace(p.Category)
	out.Occupation = strings.TrimSpace(p.Occupation)
	out.EducationLevel = strings.TrimSpace(p.EducationLevel)
	out.Language = string(p.Lang())
	out.SpecialConditions = nil
	for _, c := range p.SpecialConditions {
		if c = strings.TrimSpace(c); c != "" {
			out.SpecialConditions = append(out.SpecialConditions, c)
		}
	}
	return out
}
