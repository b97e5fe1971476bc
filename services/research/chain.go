package research

import "strings"

// DefaultModel is attempted when neither the request nor the configuration
// names a model
const DefaultModel = "gpt-4o-mini"

// BuildChain constructs the ordered, deduplicated sequence of models to
// attempt. The primary candidate is requestModel when non-empty, else
// defaultModel, else DefaultModel. Entries of the comma-separated fallback
// list follow in their original order, trimmed, with empty entries and
// models already in the chain dropped. Pure function; the result is never
// empty and contains no duplicates.
func BuildChain(requestModel, defaultModel, fallbackModels string) []string {
	primary := strings.TrimSpace(requestModel)
	if primary == "" {
		primary = strings.TrimSpace(defaultModel)
	}
	if primary == "" {
		primary = DefaultModel
	}

	chain := []string{primary}
	for _, entry := range strings.Split(fallbackModels, ",") {
		model := strings.TrimSpace(entry)
		if model == "" || contains(chain, model) {
			continue
		}
		chain = append(chain, model)
	}
	return chain
}

func contains(chain []string, model string) bool {
	for _, m := range chain {
		if m == model {
			return true
		}
	}
	return false
}
