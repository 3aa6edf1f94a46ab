package typename

import (
	"strings"
	"testing"

	"github.com/dshills/idtk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, descriptor string) *TypeName {
	t.Helper()
	tn, err := Parse(descriptor)
	require.NoError(t, err)
	require.NotNil(t, tn)
	return tn
}

func TestParseSimpleName(t *testing.T) {
	tn := mustParse(t, "SomeThing")

	assert.Equal(t, "SomeThing", tn.IdentifierName())
	assert.Empty(t, tn.FQN())
	assert.Empty(t, tn.PackageName())
	assert.Empty(t, tn.ParameterisedTypes())
	assert.Equal(t, 0, tn.ArrayDimensions())
	assert.False(t, tn.IsArrayDeclaration())
	assert.Equal(t, "st", tn.TypeAcronym())
	assert.True(t, tn.HasTypeAcronym())
	assert.False(t, tn.IsNoType())
}

func TestParseNamesWithoutStructure(t *testing.T) {
	for _, name := range []string{"int", "Foo", "someThing", "X", "HTTPServer"} {
		t.Run(name, func(t *testing.T) {
			tn := mustParse(t, name)
			assert.Equal(t, name, tn.IdentifierName())
			assert.Empty(t, tn.PackageName())
			assert.Empty(t, tn.FQN())
			assert.Equal(t, 0, tn.ArrayDimensions())
			assert.Empty(t, tn.ParameterisedTypes())
		})
	}
}

func TestParseQualifiedName(t *testing.T) {
	tn := mustParse(t, "a.b.C")

	assert.Equal(t, "C", tn.IdentifierName())
	assert.Equal(t, "a.b", tn.PackageName())
	assert.Equal(t, "a.b.C", tn.FQN())
	assert.Equal(t, "c", tn.TypeAcronym())
}

func TestParseArrayWithFQN(t *testing.T) {
	tn := mustParse(t, "org.foo.bar.SomeThing[][]")

	assert.Equal(t, "SomeThing", tn.IdentifierName())
	assert.Equal(t, "org.foo.bar.SomeThing", tn.FQN())
	assert.Equal(t, "org.foo.bar", tn.PackageName())
	assert.Empty(t, tn.ParameterisedTypes())
	assert.Equal(t, 2, tn.ArrayDimensions())
	assert.True(t, tn.IsArrayDeclaration())
	assert.Equal(t, "st", tn.TypeAcronym())
}

func TestParseGenerics(t *testing.T) {
	tn := mustParse(t, "SomeThing<String,HashMap>")

	assert.Equal(t, "SomeThing", tn.IdentifierName())
	assert.Empty(t, tn.FQN())
	assert.Empty(t, tn.PackageName())
	assert.Equal(t, 0, tn.ArrayDimensions())
	assert.Equal(t, "st", tn.TypeAcronym())

	params := tn.ParameterisedTypes()
	require.Len(t, params, 2)
	assert.Equal(t, "String", params[0].IdentifierName())
	assert.Equal(t, "HashMap", params[1].IdentifierName())
	assert.Equal(t, "hm", params[1].TypeAcronym())
}

func TestParseNestedGenerics(t *testing.T) {
	tn := mustParse(t, "Map<String, List<Map<K,V>>>")

	params := tn.ParameterisedTypes()
	require.Len(t, params, 2)
	assert.Equal(t, "String", params[0].IdentifierName())

	list := params[1]
	assert.Equal(t, "List", list.IdentifierName())
	inner := list.ParameterisedTypes()
	require.Len(t, inner, 1)
	assert.Equal(t, "Map", inner[0].IdentifierName())
	assert.Len(t, inner[0].ParameterisedTypes(), 2)
}

func TestParseNestedClass(t *testing.T) {
	tn := mustParse(t, "org.foo.bar.SomeThing.InnerClass")

	assert.Equal(t, "ic", tn.TypeAcronym())
	assert.Equal(t, "InnerClass", tn.IdentifierName())
	assert.Equal(t, "org.foo.bar.SomeThing.InnerClass", tn.FQN())
	assert.Equal(t, "org.foo.bar", tn.PackageName())
}

func TestParseFullDescriptor(t *testing.T) {
	tn := mustParse(t, "org.foo.Bar.Inner<java.lang.String,java.util.List<Integer>>[][]")

	assert.Equal(t, "Inner", tn.IdentifierName())
	assert.Equal(t, "org.foo", tn.PackageName())
	assert.Equal(t, "org.foo.Bar.Inner", tn.FQN())
	assert.Equal(t, 2, tn.ArrayDimensions())

	params := tn.ParameterisedTypes()
	require.Len(t, params, 2)
	assert.Equal(t, "java.lang.String", params[0].FQN())
	assert.Equal(t, "java.lang", params[0].PackageName())
	assert.Equal(t, "java.util", params[1].PackageName())
	require.Len(t, params[1].ParameterisedTypes(), 1)
	assert.Equal(t, "Integer", params[1].ParameterisedTypes()[0].IdentifierName())
}

func TestParseUpperCaseQualifier(t *testing.T) {
	// No lower case package prefix: no fqn and no package
	tn := mustParse(t, "Outer.Inner")

	assert.Equal(t, "Inner", tn.IdentifierName())
	assert.Empty(t, tn.FQN())
	assert.Empty(t, tn.PackageName())
}

func TestParseLowerCaseSegmentsOnly(t *testing.T) {
	tn := mustParse(t, "foo.bar")

	assert.Equal(t, "foo.bar", tn.IdentifierName())
	assert.Empty(t, tn.FQN())
	assert.Empty(t, tn.PackageName())
}

func TestParseLenientArrayInsideGeneric(t *testing.T) {
	// The last '[' is inside the parameter clause; the closing '>' is lost with it
	tn := mustParse(t, "List<String[]>")

	assert.Equal(t, "List", tn.IdentifierName())
	assert.Equal(t, 1, tn.ArrayDimensions())
	params := tn.ParameterisedTypes()
	require.Len(t, params, 1)
	assert.Equal(t, "String", params[0].IdentifierName())
	assert.Equal(t, 0, params[0].ArrayDimensions())
}

func TestParseEmptyParameters(t *testing.T) {
	tn := mustParse(t, "Foo<>")
	assert.Equal(t, "Foo", tn.IdentifierName())
	assert.Empty(t, tn.ParameterisedTypes())

	tn = mustParse(t, "Foo<A,>")
	params := tn.ParameterisedTypes()
	require.Len(t, params, 1)
	assert.Equal(t, "A", params[0].IdentifierName())
}

func TestParseUnbalanced(t *testing.T) {
	for _, descriptor := range []string{"Foo<A", "Foo>", "a.b.<C", "Foo<<A>", "[]"} {
		t.Run(descriptor, func(t *testing.T) {
			_, err := Parse(descriptor)
			assert.NoError(t, err)
		})
	}
}

func TestParseNoType(t *testing.T) {
	tn := mustParse(t, NoType)

	assert.True(t, tn.IsNoType())
	assert.Equal(t, NoType, tn.IdentifierName())
	assert.Equal(t, NoType, tn.FQN())
	assert.Empty(t, tn.PackageName())
	assert.False(t, tn.HasTypeAcronym())
	assert.Empty(t, tn.TypeAcronym())
	assert.Empty(t, tn.ParameterisedTypes())
	assert.Equal(t, 0, tn.ArrayDimensions())
	assert.Equal(t, NoType, tn.String())
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = ParseInPackage("org.foo", "")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestParseWhitespace(t *testing.T) {
	for _, descriptor := range []string{" ", "   ", "\t"} {
		tn, err := Parse(descriptor)
		require.NoError(t, err)
		assert.Equal(t, descriptor, tn.IdentifierName())
		assert.Empty(t, tn.PackageName())
		assert.Equal(t, 0, tn.ArrayDimensions())

		tn, err = ParseInPackage("org.foo", descriptor)
		require.NoError(t, err)
		assert.Equal(t, descriptor, tn.IdentifierName())
		assert.Equal(t, "org.foo", tn.PackageName())
	}
}

func TestParseInPackage(t *testing.T) {
	t.Run("simple name takes hint", func(t *testing.T) {
		tn, err := ParseInPackage("org.foo", "Bar")
		require.NoError(t, err)
		assert.Equal(t, "org.foo", tn.PackageName())
		assert.Equal(t, "Bar", tn.IdentifierName())
		assert.Empty(t, tn.FQN())
	})

	t.Run("hint wins over discovery", func(t *testing.T) {
		tn, err := ParseInPackage("com.example", "org.foo.Bar")
		require.NoError(t, err)
		assert.Equal(t, "com.example", tn.PackageName())
		assert.Equal(t, "org.foo.Bar", tn.FQN())
		assert.Equal(t, "Bar", tn.IdentifierName())
	})

	t.Run("hint not applied to parameters", func(t *testing.T) {
		tn, err := ParseInPackage("org.foo", "Bar<Baz>")
		require.NoError(t, err)
		params := tn.ParameterisedTypes()
		require.Len(t, params, 1)
		assert.Empty(t, params[0].PackageName())
	})

	t.Run("hint not validated", func(t *testing.T) {
		tn, err := ParseInPackage("", "Bar")
		require.NoError(t, err)
		assert.Empty(t, tn.PackageName())
	})

	t.Run("no type ignores hint", func(t *testing.T) {
		tn, err := ParseInPackage("org.foo", NoType)
		require.NoError(t, err)
		assert.True(t, tn.IsNoType())
		assert.Empty(t, tn.PackageName())
	})
}

func TestParameterisedTypesIsCopy(t *testing.T) {
	tn := mustParse(t, "Map<K,V>")

	first := tn.ParameterisedTypes()
	first[0] = nil
	first = append(first[:0], first[1:]...)

	second := tn.ParameterisedTypes()
	require.Len(t, second, 2)
	assert.NotNil(t, second[0])
	assert.Equal(t, "K", second[0].IdentifierName())
	assert.Len(t, first, 1)
}

func TestNestingDepth(t *testing.T) {
	deep := func(levels int) string {
		return strings.Repeat("L<", levels) + "X" + strings.Repeat(">", levels)
	}

	_, err := Parse(deep(DefaultMaxDepth))
	assert.NoError(t, err)

	_, err = Parse(deep(DefaultMaxDepth + 1))
	assert.ErrorIs(t, err, types.ErrNestingTooDeep)

	p := Parser{MaxDepth: 2}
	_, err = p.Parse(deep(2))
	assert.NoError(t, err)

	_, err = p.Parse(deep(3))
	assert.ErrorIs(t, err, types.ErrNestingTooDeep)

	_, err = p.ParseInPackage("org.foo", deep(3))
	assert.ErrorIs(t, err, types.ErrNestingTooDeep)
}

func TestTypeAcronym(t *testing.T) {
	tests := map[string]string{
		"AbstractHashMap":      "ahm",
		"java.util.ArrayList":  "al",
		"HTTPServer":           "h",
		"some_thing":           "st",
		"int":                  "i",
		"List<String>[]":       "l",
		"org.foo.Outer.Inner2": "i",
	}

	for descriptor, want := range tests {
		t.Run(descriptor, func(t *testing.T) {
			assert.Equal(t, want, mustParse(t, descriptor).TypeAcronym())
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
	}{
		{"Foo", "Foo"},
		{"a.b.C[]", "a.b.C[]"},
		{"Map<String, List<Integer>>[][]", "Map<String,List<Integer>>[][]"},
		{"org.foo.Bar.Inner<java.lang.String>", "org.foo.Bar.Inner<java.lang.String>"},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.descriptor).String())
		})
	}

	tn, err := ParseInPackage("org.foo", "Bar")
	require.NoError(t, err)
	assert.Equal(t, "org.foo.Bar", tn.String())
}

func TestParseConcurrent(t *testing.T) {
	tn := mustParse(t, "Map<String,List<Integer>>")
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = tn.String()
			_ = tn.ParameterisedTypes()
			_, _ = Parse("a.b.C<D,E>[]")
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Parse("org.foo.Bar.Inner<java.lang.String,java.util.List<Integer>>[][]")
	}
}
