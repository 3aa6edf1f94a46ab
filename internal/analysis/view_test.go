package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/idtk/pkg/subtoken"
	"github.com/dshills/idtk/pkg/typename"
)

func TestNewTypeView(t *testing.T) {
	tn, err := typename.Parse("java.util.Map<String,List<Integer>>[]")
	require.NoError(t, err)

	v := NewTypeView(tn)
	assert.Equal(t, "java.util.Map<String,List<Integer>>[]", v.Descriptor)
	assert.Equal(t, "Map", v.Identifier)
	assert.Equal(t, "java.util", v.Package)
	assert.Equal(t, "java.util.Map", v.FQN)
	assert.Equal(t, 1, v.ArrayDimensions)
	assert.Equal(t, "m", v.TypeAcronym)
	assert.False(t, v.NoType)

	require.Len(t, v.Parameters, 2)
	assert.Equal(t, "String", v.Parameters[0].Identifier)
	assert.Equal(t, "List", v.Parameters[1].Identifier)
	assert.Equal(t, 0, v.Parameters[1].ArrayDimensions)
	require.Len(t, v.Parameters[1].Parameters, 1)
	assert.Equal(t, "Integer", v.Parameters[1].Parameters[0].Identifier)
}

func TestNewTypeView_NoType(t *testing.T) {
	tn, err := typename.Parse(typename.NoType)
	require.NoError(t, err)

	v := NewTypeView(tn)
	assert.True(t, v.NoType)
	assert.Equal(t, typename.NoType, v.Descriptor)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"no_type":true`)
	assert.NotContains(t, string(data), "parameters")
}

func TestAnalyzeName(t *testing.T) {
	a := newTestAnalyzer(t, subtoken.Expand)

	v := a.AnalyzeName("subTotal_isnt")
	assert.Equal(t, "subTotal_isnt", v.Name)
	assert.Equal(t, []string{"sub", "Total", "isnt"}, v.Tokens)
	assert.Equal(t, []string{"sub", "Total", "is", "not"}, v.Normalized)
	assert.Equal(t, "sti", v.Acronym)
}
