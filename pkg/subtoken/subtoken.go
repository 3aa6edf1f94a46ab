// Package subtoken handles the "sub" particle in tokenized identifier names.
//
// Identifiers spell the particle inconsistently: "subList", "sub_list" and
// "sublist" all occur. A Policy normalises token lists in one direction,
// either joining an isolated "sub" to the following token or splitting it off
// any token it starts.
package subtoken

import (
	"fmt"
	"strings"
)

const particle = "sub"

// Policy selects how Process treats the "sub" particle
type Policy int

const (
	// Concatenate joins an isolated "sub" token with the token that follows it
	Concatenate Policy = iota
	// Expand splits "sub" off the front of every token that starts with it
	Expand
)

// String implements fmt.Stringer
func (p Policy) String() string {
	switch p {
	case Concatenate:
		return "concatenate"
	case Expand:
		return "expand"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "concatenate" or "expand" in any case
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "concatenate":
		return Concatenate, nil
	case "expand":
		return Expand, nil
	default:
		return 0, fmt.Errorf("unknown sub policy %q", s)
	}
}

// IsSub reports whether token is the particle itself, ignoring case
func IsSub(token string) bool {
	return strings.EqualFold(token, particle)
}

// HasSubPrefix reports whether token starts with the particle, ignoring case
func HasSubPrefix(token string) bool {
	return len(token) >= len(particle) && strings.EqualFold(token[:len(particle)], particle)
}

// AnyHasSubPrefix reports whether any token starts with the particle
func AnyHasSubPrefix(tokens []string) bool {
	for _, token := range tokens {
		if HasSubPrefix(token) {
			return true
		}
	}
	return false
}

// ContainsSub reports whether any token is the particle itself
func ContainsSub(tokens []string) bool {
	for _, token := range tokens {
		if IsSub(token) {
			return true
		}
	}
	return false
}

// Process applies policy to tokens and returns a new slice; tokens is not modified
func Process(tokens []string, policy Policy) []string {
	if policy == Expand {
		return expand(tokens)
	}
	return concatenate(tokens)
}

func concatenate(tokens []string) []string {
	merged := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if IsSub(tokens[i]) && i < len(tokens)-1 {
			merged = append(merged, tokens[i]+tokens[i+1])
			i++
			continue
		}
		merged = append(merged, tokens[i])
	}
	return merged
}

// expand keeps the spelling of both halves. A token that is exactly the
// particle is left alone so no empty token is produced.
func expand(tokens []string) []string {
	split := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		if HasSubPrefix(token) && len(token) > len(particle) {
			split = append(split, token[:len(particle)], token[len(particle):])
			continue
		}
		split = append(split, token)
	}
	return split
}
