package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a structured prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces strict JSON-only output.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Output STRICT JSON only.",
			"Ensure ALL keys and string values are enclosed in double quotes.",
			"Do not include any text, markdown or code fences outside the JSON object.",
		},
	}
}

// PresetIndiaSchemes scopes answers to Indian government schemes.
func PresetIndiaSchemes() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Be India-specific.",
			"Focus on common types of Central and State government schemes.",
		},
	}
}

// PresetNotLegalAdvice keeps the assistant from presenting itself as an authority.
func PresetNotLegalAdvice() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"You are NOT a legal advisor; remind users to verify details on official government portals or with authorities.",
		},
	}
}
