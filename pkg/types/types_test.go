package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifierFor(t *testing.T) {
	for _, m := range Modifiers() {
		t.Run(m.Description(), func(t *testing.T) {
			got, err := ModifierFor(m.Description())
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ModifierFor("sealed")
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ModifierFor("")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := ModifierFor("Static")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestModifierPredicates(t *testing.T) {
	assert.True(t, ModifierStatic.IsStatic())
	assert.False(t, ModifierStatic.IsFinal())
	assert.True(t, ModifierVolatile.IsVolatile())
	assert.True(t, ModifierPrivate.IsPrivate())
	assert.False(t, ModifierPublic.IsPrivate())
	assert.Len(t, Modifiers(), 11)
	assert.Equal(t, "strictfp", ModifierStrictfp.String())
}

func TestSpeciesFor(t *testing.T) {
	tests := []struct {
		description string
		want        Species
	}{
		{"formal argument", SpeciesFormalArgument},
		{"local", SpeciesLocalVariable},
		{"label name", SpeciesLabel},
		{"enum constant", SpeciesEnumConstant},
		{"nested interface", SpeciesNestedInterface},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, err := SpeciesFor(tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.description, got.Description())
		})
	}

	_, err := SpeciesFor("package")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SpeciesFor("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Len(t, AllSpecies(), 16)
}

func TestSpeciesPredicates(t *testing.T) {
	assert.True(t, SpeciesLocalClass.IsClass())
	assert.True(t, SpeciesMemberClass.IsClassOrInterface())
	assert.True(t, SpeciesNestedInterface.IsInterface())
	assert.False(t, SpeciesEnum.IsClass())

	assert.True(t, SpeciesInitialiser.IsContainer())
	assert.True(t, SpeciesEnum.IsContainer())
	assert.False(t, SpeciesField.IsContainer())
	assert.False(t, SpeciesAnnotation.IsContainer())

	assert.True(t, SpeciesField.IsReference())
	assert.False(t, SpeciesField.IsNonFieldReference())
	assert.True(t, SpeciesFormalArgument.IsNonFieldReference())
	assert.True(t, SpeciesLocalVariable.IsNonFieldReference())

	assert.True(t, SpeciesMethod.IsMethod())
	assert.True(t, SpeciesConstructor.IsConstructor())
	assert.False(t, SpeciesConstructor.IsMethod())
}

func TestIdentifierValidate(t *testing.T) {
	valid := func() Identifier {
		return Identifier{
			Name:           "retryCount",
			Species:        SpeciesLocalVariable,
			Modifiers:      []Modifier{ModifierPrivate},
			Package:        "client",
			TypeDescriptor: "int",
			Container:      "Do",
			Start:          Position{Line: 10, Column: 2},
			End:            Position{Line: 10, Column: 12},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Identifier)
		wantErr bool
	}{
		{"valid", func(*Identifier) {}, false},
		{"missing name", func(id *Identifier) { id.Name = "" }, true},
		{"bad species", func(id *Identifier) { id.Species = Species(99) }, true},
		{"missing package", func(id *Identifier) { id.Package = "" }, true},
		{"missing descriptor", func(id *Identifier) { id.TypeDescriptor = "" }, true},
		{"no type", func(id *Identifier) { id.TypeDescriptor = NoTypeDescriptor }, false},
		{"local without container", func(id *Identifier) { id.Container = "" }, true},
		{"field without container", func(id *Identifier) {
			id.Container = ""
			id.Species = SpeciesField
		}, false},
		{"inverted lines", func(id *Identifier) { id.Start.Line = 12 }, true},
		{"zero line", func(id *Identifier) { id.End.Line = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := valid()
			tt.mutate(&id)
			err := id.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIdentifierIsExported(t *testing.T) {
	id := Identifier{Name: "Client", Modifiers: []Modifier{ModifierPublic, ModifierStatic}}
	assert.True(t, id.IsExported())
	assert.True(t, id.HasModifier(ModifierStatic))

	id = Identifier{Name: "client", Modifiers: []Modifier{ModifierPrivate}}
	assert.False(t, id.IsExported())
}

func TestSearchResultValidate(t *testing.T) {
	sr := SearchResult{
		IdentifierID:   1,
		Rank:           1,
		RelevanceScore: 0.5,
		File:           &FileInfo{Path: "a.go"},
	}
	assert.NoError(t, sr.Validate())

	bad := sr
	bad.IdentifierID = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidIdentifierID)

	bad = sr
	bad.Rank = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRank)

	bad = sr
	bad.RelevanceScore = 1.5
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRelevanceScore)

	bad = sr
	bad.File = nil
	assert.ErrorIs(t, bad.Validate(), ErrMissingFileInfo)
}

func TestParseResultErrors(t *testing.T) {
	var pr ParseResult
	assert.False(t, pr.HasErrors())
	_, ok := pr.SyntaxError()
	assert.False(t, ok)

	id := &Identifier{Name: "nested", Start: Position{Line: 5, Column: 5}}
	pr.AddIdentifierError("deep.go", id, errors.New("nesting too deep"))
	assert.True(t, pr.HasErrors())
	_, ok = pr.SyntaxError()
	assert.False(t, ok, "identifier errors are not syntax errors")
	assert.Equal(t, "5:5: nested: nesting too deep", pr.Errors[0].Error())

	pr.AddSyntaxError("deep.go", Position{Line: 9, Column: 1}, "syntax error: expected ')'")
	msg, ok := pr.SyntaxError()
	require.True(t, ok)
	assert.Equal(t, "syntax error: expected ')'", msg)
	assert.Equal(t, "9:1: syntax error: expected ')'", pr.Errors[1].Error())
}
