package parser

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/idtk/pkg/types"
)

// functionSpecies classifies a function declaration by Go naming conventions:
// init functions are initialisers, package functions named New or NewXxx are
// constructors, everything else is a method.
func functionSpecies(fn *ast.FuncDecl) types.Species {
	if fn.Recv != nil {
		return types.SpeciesMethod
	}

	name := fn.Name.Name
	if name == "init" {
		return types.SpeciesInitialiser
	}
	if isConstructorName(name) {
		return types.SpeciesConstructor
	}
	return types.SpeciesMethod
}

// isConstructorName matches "New" and "NewXxx" but not words like "Newline"
func isConstructorName(name string) bool {
	if !strings.HasPrefix(name, "New") {
		return false
	}
	rest := name[len("New"):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// localSpecies maps a package-level type species to its function-local form
func localSpecies(s types.Species) types.Species {
	if s.IsInterface() {
		return types.SpeciesNestedInterface
	}
	return types.SpeciesLocalClass
}

// modifiers maps Go visibility onto the modifier set. Package-level
// declarations are static and constants are final.
func modifiers(name string, packageLevel, isConst bool) []types.Modifier {
	mods := make([]types.Modifier, 0, 3)
	if token.IsExported(name) {
		mods = append(mods, types.ModifierPublic)
	} else {
		mods = append(mods, types.ModifierPrivate)
	}
	if packageLevel {
		mods = append(mods, types.ModifierStatic)
	}
	if isConst {
		mods = append(mods, types.ModifierFinal)
	}
	return mods
}

// classifyEnums finds the Go enum idiom: a defined type over a basic type with
// package-level constants of that type. The type becomes an enum and its
// constants enum constants.
func (s *extraction) classifyEnums() {
	if len(s.namedTypes) == 0 {
		return
	}

	for i := range s.identifiers {
		id := &s.identifiers[i]
		if id.Species != types.SpeciesField || !id.HasModifier(types.ModifierFinal) {
			continue
		}

		typeIndex, ok := s.namedTypes[id.TypeDescriptor]
		if !ok {
			continue
		}

		id.Species = types.SpeciesEnumConstant
		id.Container = id.TypeDescriptor
		s.identifiers[typeIndex].Species = types.SpeciesEnum
	}
}
