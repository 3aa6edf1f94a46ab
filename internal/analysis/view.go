package analysis

import "github.com/dshills/idtk/pkg/typename"

// TypeView is a serializable snapshot of a parsed type descriptor
type TypeView struct {
	Descriptor      string     `json:"descriptor"`
	Identifier      string     `json:"identifier"`
	Package         string     `json:"package,omitempty"`
	FQN             string     `json:"fqn,omitempty"`
	ArrayDimensions int        `json:"array_dimensions,omitempty"`
	TypeAcronym     string     `json:"type_acronym,omitempty"`
	NoType          bool       `json:"no_type,omitempty"`
	Parameters      []TypeView `json:"parameters,omitempty"`
}

// NewTypeView converts tn and its parameters recursively
func NewTypeView(tn *typename.TypeName) TypeView {
	v := TypeView{
		Descriptor:      tn.String(),
		Identifier:      tn.IdentifierName(),
		Package:         tn.PackageName(),
		FQN:             tn.FQN(),
		ArrayDimensions: tn.ArrayDimensions(),
		TypeAcronym:     tn.TypeAcronym(),
		NoType:          tn.IsNoType(),
	}
	for _, p := range tn.ParameterisedTypes() {
		v.Parameters = append(v.Parameters, NewTypeView(p))
	}
	return v
}

// NameView is a serializable snapshot of a tokenized name
type NameView struct {
	Name       string   `json:"name"`
	Tokens     []string `json:"tokens"`
	Normalized []string `json:"normalized"`
	Acronym    string   `json:"acronym"`
}

// AnalyzeName tokenizes name without parsing a type
func (a *Analyzer) AnalyzeName(name string) NameView {
	tokens, normalized := a.Tokenize(name)
	return NameView{
		Name:       name,
		Tokens:     tokens,
		Normalized: normalized,
		Acronym:    Acronym(tokens),
	}
}
