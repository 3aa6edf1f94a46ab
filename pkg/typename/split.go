package typename

import "strings"

// SplitTopLevel splits a generic parameter clause on the commas that are not
// nested inside angle brackets. Parts are trimmed; the delimiters are dropped.
// A clause without a top-level comma yields one element, the trimmed clause.
//
// Brackets are counted, never validated: unbalanced input still splits.
func SplitTopLevel(clause string) []string {
	var commas []int
	level := 0
	for i := 0; i < len(clause); i++ {
		switch {
		case clause[i] == ',' && level == 0:
			commas = append(commas, i)
		case clause[i] == '<':
			level++
		case clause[i] == '>':
			level--
		}
	}

	if len(commas) == 0 {
		return []string{strings.TrimSpace(clause)}
	}

	parts := make([]string, 0, len(commas)+1)
	start := 0
	for _, comma := range commas {
		parts = append(parts, strings.TrimSpace(clause[start:comma]))
		start = comma + 1
	}
	return append(parts, strings.TrimSpace(clause[start:]))
}
