package typename

import (
	"fmt"
	"strings"

	"github.com/dshills/idtk/pkg/tokenizer"
	"github.com/dshills/idtk/pkg/types"
)

// DefaultMaxDepth is the generic nesting depth allowed when Parser.MaxDepth is not set
const DefaultMaxDepth = 64

// Parser turns type descriptors into TypeName trees. The zero value is ready to use.
type Parser struct {
	// MaxDepth limits how deeply generic parameters may nest. Values <= 0 mean DefaultMaxDepth.
	MaxDepth int
}

// Parse parses descriptor with the default parser
func Parse(descriptor string) (*TypeName, error) {
	return Parser{}.Parse(descriptor)
}

// ParseInPackage parses descriptor with the default parser, recording packageName
// as the package of the outermost type
func ParseInPackage(packageName, descriptor string) (*TypeName, error) {
	return Parser{}.ParseInPackage(packageName, descriptor)
}

// Parse parses a descriptor such as "org.foo.Bar.Inner<java.lang.String,List<Integer>>[][]".
// Malformed structure is tolerated; only an empty descriptor or excessive nesting fail.
// Whitespace is not trimmed and becomes part of the names.
func (p Parser) Parse(descriptor string) (*TypeName, error) {
	if descriptor == "" {
		return nil, fmt.Errorf("%w: empty type descriptor", types.ErrInvalidArgument)
	}
	return p.parse(descriptor, nil, 0)
}

// ParseInPackage parses descriptor but takes the package name from packageName
// instead of discovering it. The fully qualified name and identifier are still
// resolved from the descriptor. packageName is not validated.
func (p Parser) ParseInPackage(packageName, descriptor string) (*TypeName, error) {
	if descriptor == "" {
		return nil, fmt.Errorf("%w: empty type descriptor", types.ErrInvalidArgument)
	}
	return p.parse(descriptor, &packageName, 0)
}

func (p Parser) maxDepth() int {
	if p.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

func (p Parser) parse(raw string, packageHint *string, depth int) (*TypeName, error) {
	if raw == NoType {
		return &TypeName{identifierName: NoType, fqn: NoType, noType: true}, nil
	}

	t := &TypeName{}

	for {
		i := strings.LastIndexByte(raw, '[')
		if i < 0 {
			break
		}
		raw = raw[:i]
		t.arrayDimensions++
	}

	if i := strings.IndexByte(raw, '<'); i >= 0 {
		if depth >= p.maxDepth() {
			return nil, fmt.Errorf("%w: more than %d levels of generic parameters", types.ErrNestingTooDeep, p.maxDepth())
		}

		clause := strings.TrimPrefix(raw[i:], "<")
		clause = strings.TrimSuffix(clause, ">")
		raw = raw[:i]

		for _, part := range SplitTopLevel(clause) {
			if part == "" {
				continue
			}
			child, err := p.parse(part, nil, depth+1)
			if err != nil {
				return nil, err
			}
			t.params = append(t.params, child)
		}
	}

	t.resolveName(raw)
	if packageHint != nil {
		t.packageName = *packageHint
	}
	t.acronym = acronym(t.identifierName)
	return t, nil
}

// resolveName splits a dotted name into package, fully qualified name and
// identifier. Segments starting with an upper case letter are taken to be
// types; everything before the first of them is the package.
func (t *TypeName) resolveName(name string) {
	if !hasTypeSegment(name) {
		t.identifierName = name
		return
	}

	if startsLower(name) {
		t.fqn = name
	}
	t.identifierName = name[strings.LastIndexByte(name, '.')+1:]

	rest := name
	for {
		rest = rest[:strings.LastIndexByte(rest, '.')]
		if !hasTypeSegment(rest) {
			break
		}
	}
	if startsLower(rest) {
		t.packageName = rest
	}
}

// hasTypeSegment reports whether s has a '.' followed by an ASCII upper case letter
func hasTypeSegment(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] >= 'A' && s[i+1] <= 'Z' {
			return true
		}
	}
	return false
}

func startsLower(s string) bool {
	return s != "" && s[0] >= 'a' && s[0] <= 'z'
}

func acronym(identifier string) string {
	var b strings.Builder
	for _, word := range tokenizer.Tokenize(identifier) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToLower(b.String())
}
