package typename

import (
	"strings"

	"github.com/dshills/idtk/pkg/types"
)

// NoType is the descriptor used for declarations without a type, such as a
// constructor. It is never parsed.
const NoType = types.NoTypeDescriptor

// TypeName is the parsed form of a type descriptor. It is immutable once
// returned by the parser and safe to share between goroutines.
type TypeName struct {
	identifierName  string
	packageName     string
	fqn             string
	arrayDimensions int
	params          []*TypeName
	acronym         string
	noType          bool
}

// IdentifierName returns the simple name of the type, e.g. "Inner" for "a.b.Outer.Inner"
func (t *TypeName) IdentifierName() string {
	return t.identifierName
}

// PackageName returns the dotted package path, or "" when none was found or given
func (t *TypeName) PackageName() string {
	return t.packageName
}

// FQN returns the fully qualified name without generics or array brackets.
// It is "" when the descriptor does not start with a package path.
func (t *TypeName) FQN() string {
	return t.fqn
}

// ArrayDimensions returns the number of array bracket groups removed from the descriptor
func (t *TypeName) ArrayDimensions() int {
	return t.arrayDimensions
}

// IsArrayDeclaration reports whether any array dimensions were stripped
func (t *TypeName) IsArrayDeclaration() bool {
	return t.arrayDimensions > 0
}

// ParameterisedTypes returns the generic parameters in declaration order.
// Each call returns a new slice; the elements are shared and immutable.
func (t *TypeName) ParameterisedTypes() []*TypeName {
	params := make([]*TypeName, len(t.params))
	copy(params, t.params)
	return params
}

// TypeAcronym returns the lower case initials of the words in the identifier
// name, e.g. "ahm" for "AbstractHashMap"
func (t *TypeName) TypeAcronym() string {
	return t.acronym
}

// HasTypeAcronym is false only for NoType
func (t *TypeName) HasTypeAcronym() bool {
	return !t.noType
}

// IsNoType reports whether t is the NoType sentinel
func (t *TypeName) IsNoType() bool {
	return t.noType
}

// String renders the descriptor in canonical form, e.g. "java.util.Map<K,V>[]"
func (t *TypeName) String() string {
	if t.noType {
		return NoType
	}

	var b strings.Builder
	t.render(&b)
	return b.String()
}

func (t *TypeName) render(b *strings.Builder) {
	switch {
	case t.fqn != "":
		b.WriteString(t.fqn)
	case t.packageName != "":
		b.WriteString(t.packageName)
		b.WriteByte('.')
		b.WriteString(t.identifierName)
	default:
		b.WriteString(t.identifierName)
	}

	if len(t.params) > 0 {
		b.WriteByte('<')
		for i, p := range t.params {
			if i > 0 {
				b.WriteByte(',')
			}
			p.render(b)
		}
		b.WriteByte('>')
	}

	for i := 0; i < t.arrayDimensions; i++ {
		b.WriteString("[]")
	}
}
