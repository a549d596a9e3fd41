package recommend

import (
	"fmt"
	"strings"

	"schemefinder/internal/llmtool"
	"schemefinder/internal/scheme"
)

const (
	minNames         = 10
	maxNames         = 15
	maxSearchResults = 10
	chatWordLimit    = 50

	// stateShare is the minimum percentage of names that must be home-state schemes.
	stateShare = 40
)

const (
	noInfoEnglish = "I don't have that information based on the available scheme details."
	noInfoHindi   = "उपलब्ध योजना विवरण के आधार पर मेरे पास यह जानकारी नहीं है।"
)

var recordFields = llmtool.MustFieldsFromStruct(scheme.Record{})

const recordSchema = `{
  "schemes": [
    {
      "name": "Scheme Name",
      "type": "Central or State",
      "state": "State Name or All States",
      "categoryTags": ["Tag1", "Tag2"],
      "description": "Brief description",
      "eligibilitySummary": ["Criteria 1", "Criteria 2"],
      "requiredDocuments": ["Doc 1", "Doc 2"],
      "applicationSteps": ["Step 1", "Step 2"],
      "benefits": ["Benefit 1", "Benefit 2"],
      "application_url": "https://official.portal or N/A",
      "deadline": "YYYY-MM-DD, Open or N/A",
      "usefulnessScore": 85
    }
  ]
}`

const namesSchema = `{
  "schemeNames": ["Scheme Name 1", "Scheme Name 2"],
  "generalAdvice": ["Advice 1", "Advice 2"]
}`

// promptProfile is the part of the profile the model sees. UserID and language never leave
// the process.
type promptProfile struct {
	Name              string   `json:"name"`
	Age               string   `json:"age"`
	Gender            string   `json:"gender"`
	State             string   `json:"state"`
	City              string   `json:"city"`
	AnnualIncome      string   `json:"annualIncome"`
	Category          string   `json:"category"`
	Occupation        string   `json:"occupation"`
	EducationLevel    string   `json:"educationLevel"`
	SpecialConditions []string `json:"specialConditions"`
}

func toPromptProfile(p scheme.UserProfile) promptProfile {
	out := promptProfile{
		Name:              orNA(p.Name),
		Age:               orNA(string(p.Age)),
		Gender:            orNA(p.Gender),
		State:             orNA(p.State),
		City:              orNA(p.City),
		AnnualIncome:      orNA(p.AnnualIncome),
		Category:          orNA(p.Category),
		Occupation:        orNA(p.Occupation),
		EducationLevel:    orNA(p.EducationLevel),
		SpecialConditions: p.SpecialConditions,
	}
	if len(out.SpecialConditions) == 0 {
		out.SpecialConditions = []string{"None"}
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return scheme.NotAvailable
	}
	return s
}

// eligibilityRules renders the hard filters for p. Values are interpolated as JSON string
// literals so profile text cannot inject instructions.
func eligibilityRules(p scheme.UserProfile) []string {
	q := llmtool.Quote
	rules := []string{}

	gender := strings.ToLower(p.Gender)
	switch gender {
	case "male":
		rules = append(rules, fmt.Sprintf("The user's gender is %s: EXCLUDE schemes meant only for women or girls (women-only schemes must not appear).", q(p.Gender)))
	case "female":
		rules = append(rules, fmt.Sprintf("The user's gender is %s: EXCLUDE schemes meant only for men or boys.", q(p.Gender)))
	default:
		rules = append(rules, fmt.Sprintf("The user's gender is %s: EXCLUDE schemes restricted to a gender that does not match.", q(orNA(p.Gender))))
	}

	if n, ok := p.Age.Years(); ok {
		rules = append(rules, fmt.Sprintf("The user is %d years old: EXCLUDE schemes whose minimum or maximum age does not include %d.", n, n))
	} else {
		rules = append(rules, "The user's age is unknown: prefer schemes without strict age limits.")
	}

	if p.AnnualIncome != "" {
		rules = append(rules, fmt.Sprintf("Annual family income bracket is %s: EXCLUDE schemes whose income ceiling is below this bracket.", q(p.AnnualIncome)))
	}

	if strings.EqualFold(p.Category, "General") {
		rules = append(rules, fmt.Sprintf("The user's social category is %s: EXCLUDE schemes reserved for SC, ST or OBC categories.", q(p.Category)))
	} else if p.Category != "" {
		rules = append(rules, fmt.Sprintf("The user's social category is %s: schemes reserved for this category are eligible; EXCLUDE schemes reserved for other categories.", q(p.Category)))
	}

	if p.Occupation != "" {
		rules = append(rules, fmt.Sprintf("Occupation %s is a relevance boost only: rank schemes for this occupation higher, but do NOT exclude a scheme because of occupation.", q(p.Occupation)))
	}
	if len(p.SpecialConditions) > 0 {
		rules = append(rules, fmt.Sprintf("Consider the user's special conditions %s when judging eligibility and relevance.", q(strings.Join(p.SpecialConditions, ", "))))
	}
	return rules
}

// languageRule keeps machine-read values in English whatever the output language.
func languageRule(lang scheme.Language) string {
	if lang.IsHindi() {
		return `Output ALL human-readable content (names, descriptions, advice, tags, eligibility, documents, steps, benefits) in HINDI. HOWEVER, keep the value of "type" strictly "Central" or "State" in English. Keep JSON keys in English.`
	}
	return `Output content in English. Keep the value of "type" strictly "Central" or "State".`
}

func languageName(lang scheme.Language) string {
	if lang.IsHindi() {
		return "Hindi"
	}
	return "English"
}

// NameDiscoveryPrompt asks for 10-15 candidate scheme names for p.
func NameDiscoveryPrompt(p scheme.UserProfile) (string, error) {
	lang := p.Lang()
	rules := []string{
		fmt.Sprintf("Return between %d and %d scheme names, most relevant first.", minNames, maxNames),
		fmt.Sprintf("Prioritize the user's home state %s: at least %d%% of the names must be schemes run by that state's government; the rest may be Central schemes.", llmtool.Quote(orNA(p.State)), stateShare),
		"Use the official scheme name so it can be looked up later.",
		"Only list schemes that are currently active.",
	}
	rules = append(rules, eligibilityRules(p)...)
	rules = append(rules, languageRule(lang))

	spec := llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
		Purpose:      "You help Indian citizens discover government welfare schemes they are likely eligible for. Given the user profile in [INPUT], list candidate scheme names and a few lines of general advice.",
		Background:   "The names are looked up in a second step that fetches full details, so each name must identify one real scheme.",
		OutputSchema: namesSchema,
		Rules:        rules,
		OutputFormat: "A single JSON object with the keys schemeNames and generalAdvice.",
		Language:     languageName(lang),
	}, llmtool.PresetStrictJSON(), llmtool.PresetIndiaSchemes(), llmtool.PresetNotLegalAdvice())
	return llmtool.Render(spec, toPromptProfile(p))
}

type detailsInput struct {
	SchemeNames []string      `json:"schemeNames"`
	Profile     promptProfile `json:"profile"`
}

// SchemeDetailsPrompt asks for the full record of every name in batch.
func SchemeDetailsPrompt(p scheme.UserProfile, batch []string) (string, error) {
	lang := p.Lang()
	rules := []string{
		"Return one object in schemes for each name in [INPUT].schemeNames, in the same order.",
		"Copy each name verbatim into the name field.",
		"DROP any listed scheme the user is NOT eligible for according to the rules below; do not add schemes that were not listed.",
		`"type" must be exactly "Central" or "State".`,
		`"state" is the state the scheme applies to, or "All States" for Central schemes.`,
		`"application_url" is the official application URL, or "N/A" when unknown.`,
		`"deadline" is an ISO date (YYYY-MM-DD), "Open" for rolling applications, or "N/A".`,
		"usefulnessScore is an integer from 0 to 100 estimating how useful the scheme is for this user.",
	}
	rules = append(rules, eligibilityRules(p)...)
	rules = append(rules, languageRule(lang))

	spec := llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
		Purpose:      "You provide accurate details of Indian government welfare schemes. Describe each scheme named in [INPUT].schemeNames for the user profile in [INPUT].profile.",
		OutputFields: recordFields,
		OutputSchema: recordSchema,
		Rules:        rules,
		OutputFormat: "A single JSON object with the key schemes.",
		Language:     languageName(lang),
	}, llmtool.PresetStrictJSON(), llmtool.PresetIndiaSchemes(), llmtool.PresetNotLegalAdvice())
	return llmtool.Render(spec, detailsInput{SchemeNames: batch, Profile: toPromptProfile(p)})
}

type chatInput struct {
	Scheme   scheme.Record `json:"scheme"`
	Question string        `json:"question"`
}

// NoInformationAnswer is what the model must say when the record does not answer the question.
func NoInformationAnswer(lang scheme.Language) string {
	if lang.IsHindi() {
		return noInfoHindi
	}
	return noInfoEnglish
}

// ChatPrompt constrains the answer to the supplied record.
func ChatPrompt(rec scheme.Record, question string, lang scheme.Language) (string, error) {
	answerLang := "Answer in English."
	if lang.IsHindi() {
		answerLang = "Answer in HINDI."
	}
	spec := llmtool.StructuredPromptSpec{
		Purpose: "You are a helpful government scheme advisor. Answer the user's question in [INPUT].question about the scheme in [INPUT].scheme.",
		Rules: []string{
			"Answer based ONLY on the provided scheme details.",
			fmt.Sprintf("If the answer is not in the scheme details, say %s", llmtool.Quote(NoInformationAnswer(lang))),
			fmt.Sprintf("Keep the answer concise (under %d words if possible).", chatWordLimit),
			answerLang,
		},
		OutputFormat: "Plain text only. No JSON, no markdown.",
		Language:     languageName(lang),
	}
	return llmtool.Render(spec, chatInput{Scheme: rec, Question: question})
}

type searchInput struct {
	Query string `json:"query"`
}

// SearchPrompt asks for up to 10 schemes matching a keyword.
func SearchPrompt(query string, lang scheme.Language) (string, error) {
	spec := llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
		Purpose:      "You help Indian citizens find government welfare schemes. Find schemes that match the keyword in [INPUT].query.",
		OutputFields: recordFields,
		OutputSchema: recordSchema,
		Rules: []string{
			fmt.Sprintf("Return UP TO %d schemes, best match first.", maxSearchResults),
			"Match on scheme name, purpose, beneficiaries or benefits.",
			`"type" must be exactly "Central" or "State".`,
			`"application_url" is the official application URL, or "N/A" when unknown.`,
			"Return an empty schemes array when nothing matches.",
			languageRule(lang),
		},
		OutputFormat: "A single JSON object with the key schemes.",
		Language:     languageName(lang),
	}, llmtool.PresetStrictJSON(), llmtool.PresetIndiaSchemes())
	return llmtool.Render(spec, searchInput{Query: query})
}
