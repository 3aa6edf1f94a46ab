package types

import "fmt"

// Species identifies the kind of program entity an identifier names
type Species int

const (
	SpeciesAnnotationMember Species = iota
	SpeciesAnnotation
	SpeciesClass
	SpeciesConstructor
	SpeciesEnumConstant
	SpeciesEnum
	SpeciesField
	SpeciesFormalArgument
	SpeciesInitialiser // always anonymous
	SpeciesInterface
	SpeciesLabel
	SpeciesLocalVariable
	SpeciesLocalClass
	SpeciesMemberClass
	SpeciesMethod
	SpeciesNestedInterface
)

var speciesDescriptions = [...]string{
	SpeciesAnnotationMember: "annotation member",
	SpeciesAnnotation:       "annotation",
	SpeciesClass:            "class",
	SpeciesConstructor:      "constructor",
	SpeciesEnumConstant:     "enum constant",
	SpeciesEnum:             "enum",
	SpeciesField:            "field",
	SpeciesFormalArgument:   "formal argument",
	SpeciesInitialiser:      "initialiser",
	SpeciesInterface:        "interface",
	SpeciesLabel:            "label name",
	SpeciesLocalVariable:    "local",
	SpeciesLocalClass:       "local class",
	SpeciesMemberClass:      "member class",
	SpeciesMethod:           "method",
	SpeciesNestedInterface:  "nested interface",
}

var speciesByDescription = func() map[string]Species {
	m := make(map[string]Species, len(speciesDescriptions))
	for i, d := range speciesDescriptions {
		m[d] = Species(i)
	}
	return m
}()

// AllSpecies returns every species in declaration order
func AllSpecies() []Species {
	all := make([]Species, len(speciesDescriptions))
	for i := range speciesDescriptions {
		all[i] = Species(i)
	}
	return all
}

// SpeciesFor recovers the species for a textual description such as "formal argument"
func SpeciesFor(description string) (Species, error) {
	if description == "" {
		return 0, fmt.Errorf("%w: empty species description", ErrInvalidArgument)
	}
	s, ok := speciesByDescription[description]
	if !ok {
		return 0, fmt.Errorf("%w: no species found with description %q", ErrInvalidArgument, description)
	}
	return s, nil
}

// Description returns the lower case description of the species.
// Use it in preference to String when persisting.
func (s Species) Description() string {
	if s < 0 || int(s) >= len(speciesDescriptions) {
		return fmt.Sprintf("species(%d)", int(s))
	}
	return speciesDescriptions[s]
}

// String implements fmt.Stringer
func (s Species) String() string {
	return s.Description()
}

// IsContainer reports whether the species can hold name declarations
func (s Species) IsContainer() bool {
	switch s {
	case SpeciesMethod, SpeciesClass, SpeciesConstructor, SpeciesInitialiser, SpeciesInterface,
		SpeciesLocalClass, SpeciesMemberClass, SpeciesEnum, SpeciesNestedInterface:
		return true
	}
	return false
}

// IsClass reports whether the species is a class, including member and local classes
func (s Species) IsClass() bool {
	return s == SpeciesClass || s == SpeciesLocalClass || s == SpeciesMemberClass
}

func (s Species) IsInterface() bool {
	return s == SpeciesInterface || s == SpeciesNestedInterface
}

func (s Species) IsClassOrInterface() bool {
	return s.IsClass() || s.IsInterface()
}

func (s Species) IsMethod() bool {
	return s == SpeciesMethod
}

func (s Species) IsConstructor() bool {
	return s == SpeciesConstructor
}

// IsReference reports whether the species names a value: a field, argument or local
func (s Species) IsReference() bool {
	return s == SpeciesLocalVariable || s == SpeciesFormalArgument || s == SpeciesField
}

// IsNonFieldReference reports whether the species is a formal argument or local variable
func (s Species) IsNonFieldReference() bool {
	return s == SpeciesLocalVariable || s == SpeciesFormalArgument
}
