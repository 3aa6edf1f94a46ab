// Package contraction expands contracted modal verbs found in identifier
// names, such as "cant" and "wont", into their two-word form.
//
// The default dictionary is embedded in the binary. Load it once at startup
// and pass it to whatever needs it:
//
//	dict, err := contraction.LoadDefault()
//	if err != nil {
//	    log.Fatalf("Failed to load contractions: %v", err)
//	}
//	dict.Expand([]string{"they", "cant", "sing"}) // ["they", "can", "not", "sing"]
package contraction

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/idtk/pkg/types"
)

//go:embed contractions.txt
var defaultContractions string

// Dictionary maps contracted tokens to their expansion. It is read-only after
// loading and safe for concurrent use.
type Dictionary struct {
	expansions map[string][2]string
}

// Load reads a dictionary with one "contraction,first second" entry per line.
// Blank lines and lines starting with '#' are ignored. Any other line that is
// not exactly a contraction, a comma and a two-word expansion is an error.
func Load(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{expansions: make(map[string][2]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 2 || fields[0] == "" {
			return nil, fmt.Errorf("%w: line %d: expected one comma in %q", types.ErrMalformedDictionary, lineNo, line)
		}

		words := strings.Fields(fields[1])
		if len(words) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected two words in expansion %q", types.ErrMalformedDictionary, lineNo, fields[1])
		}

		d.expansions[fields[0]] = [2]string{words[0], words[1]}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedDictionary, err)
	}

	return d, nil
}

// LoadDefault loads the embedded dictionary
func LoadDefault() (*Dictionary, error) {
	return Load(strings.NewReader(defaultContractions))
}

// MustLoadDefault is like LoadDefault but panics if the embedded dictionary is malformed
func MustLoadDefault() *Dictionary {
	d, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return d
}

// IsContraction reports whether token is a known contraction. Matching is case sensitive.
func (d *Dictionary) IsContraction(token string) bool {
	_, ok := d.expansions[token]
	return ok
}

// Expand returns a new slice with every contraction replaced by its two words
func (d *Dictionary) Expand(tokens []string) []string {
	expanded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if words, ok := d.expansions[token]; ok {
			expanded = append(expanded, words[0], words[1])
			continue
		}
		expanded = append(expanded, token)
	}
	return expanded
}

// Len returns the number of contractions in the dictionary
func (d *Dictionary) Len() int {
	return len(d.expansions)
}
