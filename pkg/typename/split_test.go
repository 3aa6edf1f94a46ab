package typename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		want   []string
	}{
		{"single", "String", []string{"String"}},
		{"two", "String,HashMap", []string{"String", "HashMap"}},
		{"nested", "String,List<Map<K,V>>", []string{"String", "List<Map<K,V>>"}},
		{"trims parts", " A , B<C, D> ", []string{"A", "B<C, D>"}},
		{"single trimmed", "  Foo  ", []string{"Foo"}},
		{"trailing comma", "A,", []string{"A", ""}},
		{"unbalanced open", "A<B,C", []string{"A<B,C"}},
		{"unbalanced close", "A>,B,C", []string{"A>,B,C"}},
		{"empty", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTopLevel(tt.clause))
		})
	}
}
