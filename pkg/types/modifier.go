package types

import "fmt"

// Modifier is a declaration modifier as written in source code
type Modifier int

const (
	ModifierAbstract Modifier = iota
	ModifierFinal
	ModifierNative
	ModifierPrivate
	ModifierProtected
	ModifierPublic
	ModifierStatic
	ModifierStrictfp
	ModifierSynchronized
	ModifierTransient
	ModifierVolatile
)

var modifierDescriptions = [...]string{
	ModifierAbstract:     "abstract",
	ModifierFinal:        "final",
	ModifierNative:       "native",
	ModifierPrivate:      "private",
	ModifierProtected:    "protected",
	ModifierPublic:       "public",
	ModifierStatic:       "static",
	ModifierStrictfp:     "strictfp",
	ModifierSynchronized: "synchronized",
	ModifierTransient:    "transient",
	ModifierVolatile:     "volatile",
}

var modifiersByDescription = func() map[string]Modifier {
	m := make(map[string]Modifier, len(modifierDescriptions))
	for i, d := range modifierDescriptions {
		m[d] = Modifier(i)
	}
	return m
}()

// Modifiers returns every modifier in declaration order
func Modifiers() []Modifier {
	all := make([]Modifier, len(modifierDescriptions))
	for i := range modifierDescriptions {
		all[i] = Modifier(i)
	}
	return all
}

// ModifierFor returns the modifier whose description matches exactly, e.g. "static"
func ModifierFor(description string) (Modifier, error) {
	if description == "" {
		return 0, fmt.Errorf("%w: empty modifier description", ErrInvalidArgument)
	}
	m, ok := modifiersByDescription[description]
	if !ok {
		return 0, fmt.Errorf("%w: unrecognised modifier description %q", ErrInvalidArgument, description)
	}
	return m, nil
}

// Description returns the lower case keyword for the modifier
func (m Modifier) Description() string {
	if m < 0 || int(m) >= len(modifierDescriptions) {
		return fmt.Sprintf("modifier(%d)", int(m))
	}
	return modifierDescriptions[m]
}

// String implements fmt.Stringer
func (m Modifier) String() string {
	return m.Description()
}

func (m Modifier) IsAbstract() bool     { return m == ModifierAbstract }
func (m Modifier) IsFinal() bool        { return m == ModifierFinal }
func (m Modifier) IsNative() bool       { return m == ModifierNative }
func (m Modifier) IsPrivate() bool      { return m == ModifierPrivate }
func (m Modifier) IsProtected() bool    { return m == ModifierProtected }
func (m Modifier) IsPublic() bool       { return m == ModifierPublic }
func (m Modifier) IsStatic() bool       { return m == ModifierStatic }
func (m Modifier) IsStrictfp() bool     { return m == ModifierStrictfp }
func (m Modifier) IsSynchronized() bool { return m == ModifierSynchronized }
func (m Modifier) IsTransient() bool    { return m == ModifierTransient }
func (m Modifier) IsVolatile() bool     { return m == ModifierVolatile }
