package types

import (
	"errors"
	"go/token"
)

// NoTypeDescriptor marks an identifier that declares no type, e.g. a method without results
const NoTypeDescriptor = "#no type#"

// Position represents a location in source code
type Position struct {
	Line   int
	Column int
}

// Import is an import statement of a parsed file
type Import struct {
	Path  string // e.g. "github.com/pkg/errors"
	Alias string // "" when the package name is used, "_" and "." included
}

// Identifier is a declared name extracted from source code
type Identifier struct {
	// Identification
	Name      string
	Species   Species
	Modifiers []Modifier
	Package   string

	// TypeDescriptor is the declared type in descriptor form, e.g. "map<string,Item[]>",
	// or NoTypeDescriptor
	TypeDescriptor string

	// Container is the name of the enclosing declaration: the receiver or struct for
	// members, the function for parameters and locals. Empty at package level.
	Container string

	// Location
	Start Position
	End   Position
}

// HasModifier reports whether m was recorded for the identifier
func (id *Identifier) HasModifier(m Modifier) bool {
	for _, have := range id.Modifiers {
		if have == m {
			return true
		}
	}
	return false
}

// IsExported returns true if the identifier is visible outside its package
func (id *Identifier) IsExported() bool {
	return id.HasModifier(ModifierPublic) && token.IsExported(id.Name)
}

// ValidateSpecies checks that the species is one of the closed set
func (id *Identifier) ValidateSpecies() error {
	if id.Species < 0 || int(id.Species) >= len(speciesDescriptions) {
		return errors.New("invalid identifier species")
	}
	return nil
}

// Validate performs comprehensive validation of the identifier
func (id *Identifier) Validate() error {
	if id.Name == "" {
		return errors.New("identifier name is required")
	}

	if err := id.ValidateSpecies(); err != nil {
		return err
	}

	if id.Package == "" {
		return errors.New("package name is required")
	}

	if id.TypeDescriptor == "" {
		return errors.New("type descriptor is required, use NoTypeDescriptor for untyped names")
	}

	// Members and locals belong to something
	if (id.Species.IsNonFieldReference() || id.Species == SpeciesLabel) && id.Container == "" {
		return errors.New("arguments, locals and labels must have a container")
	}

	if id.Start.Line <= 0 || id.End.Line <= 0 {
		return errors.New("invalid position: line numbers must be positive")
	}

	if id.Start.Line > id.End.Line {
		return errors.New("invalid position: start line must be before or equal to end line")
	}

	return nil
}
