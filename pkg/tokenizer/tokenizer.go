package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize splits name into words. It never fails; an empty name, or one made
// only of separators, yields an empty slice.
func Tokenize(name string) []string {
	tokens := make([]string, 0, 4)
	for _, fragment := range splitSeparators(name) {
		tokens = append(tokens, splitCase(fragment)...)
	}
	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '$'
}

// splitSeparators drops every run of separators and returns the non-empty
// fragments between them
func splitSeparators(name string) []string {
	return strings.FieldsFunc(name, isSeparator)
}

// splitCase breaks a fragment before each upper case letter preceded by a
// lower case letter
func splitCase(fragment string) []string {
	var parts []string
	var current strings.Builder
	prev := rune(-1)

	for _, r := range fragment {
		if prev >= 0 && unicode.IsLower(prev) && unicode.IsUpper(r) {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		prev = r
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
