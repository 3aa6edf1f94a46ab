package contraction

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/idtk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	d, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, 20, d.Len())
	assert.True(t, d.IsContraction("cant"))
	assert.True(t, d.IsContraction("wont"))
	assert.False(t, d.IsContraction("can"))
	assert.False(t, d.IsContraction("Cant"))
}

func TestExpand(t *testing.T) {
	d := MustLoadDefault()

	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"single", []string{"wont"}, []string{"will", "not"}},
		{"in phrase", []string{"they", "cant", "sing"}, []string{"they", "can", "not", "sing"}},
		{"several", []string{"cant", "shouldnt", "didnt"}, []string{"can", "not", "should", "not", "did", "not"}},
		{"none", []string{"get", "Value"}, []string{"get", "Value"}},
		{"empty", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Expand(tt.tokens))
		})
	}
}

func TestExpandDoesNotMutateInput(t *testing.T) {
	d := MustLoadDefault()
	tokens := []string{"dont", "stop"}
	_ = d.Expand(tokens)
	assert.Equal(t, []string{"dont", "stop"}, tokens)
}

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader("# modal verbs\n\nainnt,am not\r\nwont,will not\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"am", "not"}, d.Expand([]string{"ainnt"}))
}

func TestLoadMalformed(t *testing.T) {
	tests := map[string]string{
		"no comma":    "cant can not\n",
		"two commas":  "cant,can,not\n",
		"one word":    "cant,cannot\n",
		"three words": "cant,can not ever\n",
		"empty key":   ",can not\n",
		"after valid": "wont,will not\nbroken\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrMalformedDictionary))
		})
	}
}
