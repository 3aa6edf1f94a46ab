package subtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessConcatenate(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"isolated sub", []string{"some", "sub", "token", "list"}, []string{"some", "subtoken", "list"}},
		{"mixed case", []string{"get", "Sub", "List"}, []string{"get", "SubList"}},
		{"trailing sub kept", []string{"list", "sub"}, []string{"list", "sub"}},
		{"consecutive", []string{"sub", "sub", "x"}, []string{"subsub", "x"}},
		{"no sub", []string{"subtoken", "list"}, []string{"subtoken", "list"}},
		{"empty", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Process(tt.tokens, Concatenate))
		})
	}
}

func TestProcessExpand(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"prefixed", []string{"some", "subtoken", "list"}, []string{"some", "sub", "token", "list"}},
		{"case preserved", []string{"SubList"}, []string{"Sub", "List"}},
		{"bare sub", []string{"sub", "list"}, []string{"sub", "list"}},
		{"no prefix", []string{"tokens", "sum"}, []string{"tokens", "sum"}},
		{"empty", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Process(tt.tokens, Expand))
		})
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	tokens := []string{"sub", "token"}
	_ = Process(tokens, Concatenate)
	_ = Process(tokens, Expand)
	assert.Equal(t, []string{"sub", "token"}, tokens)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsSub("sub"))
	assert.True(t, IsSub("SUB"))
	assert.False(t, IsSub("subs"))

	assert.True(t, HasSubPrefix("suBToken"))
	assert.True(t, HasSubPrefix("sub"))
	assert.False(t, HasSubPrefix("su"))
	assert.False(t, HasSubPrefix("asub"))

	assert.True(t, AnyHasSubPrefix([]string{"a", "Subway"}))
	assert.False(t, AnyHasSubPrefix([]string{"a", "b"}))

	assert.True(t, ContainsSub([]string{"x", "Sub"}))
	assert.False(t, ContainsSub([]string{"subx"}))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Expand")
	require.NoError(t, err)
	assert.Equal(t, Expand, p)

	p, err = ParsePolicy("concatenate")
	require.NoError(t, err)
	assert.Equal(t, Concatenate, p)
	assert.Equal(t, "concatenate", p.String())

	_, err = ParsePolicy("merge")
	assert.Error(t, err)
}
