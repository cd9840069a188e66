package pipeline

import "strings"

// Schema lists the accepted header names for each required column. The first
// name of every list is the one used when exporting.
type Schema struct {
	Decision  []string
	UniqueID  []string
	ProofLink []string
}

func DefaultSchema() Schema {
	return Schema{
		Decision:  []string{"Decision"},
		UniqueID:  []string{"Unique ID", "UniqueID"},
		ProofLink: []string{"Proof of Affiliation Links", "ProofLink"},
	}
}

// WithDefaults fills every empty alias list from DefaultSchema.
func (s Schema) WithDefaults() Schema {
	def := DefaultSchema()
	s.Decision = cleanAliases(s.Decision, def.Decision)
	s.UniqueID = cleanAliases(s.UniqueID, def.UniqueID)
	s.ProofLink = cleanAliases(s.ProofLink, def.ProofLink)
	return s
}

func cleanAliases(names, fallback []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// columnIndex returns the position of the first header matching any alias, or -1.
func columnIndex(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.TrimSpace(h) == alias {
				return i
			}
		}
	}
	return -1
}
