package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \n\t  ", want: ""},
		{name: "collapses runs", input: "  hola \n\n  mundo\t\tcruel  ", want: "hola mundo cruel"},
		{name: "composes accents", input: "informacio\u0301n", want: "informaci\u00f3n"},
		{name: "non breaking space", input: "a\u00a0\u00a0b", want: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeTextIsIdempotent(t *testing.T) {
	inputs := []string{"", "a  b", "Café \n con\tleche", "  ya normal  "}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once))
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 5, WordCount("uno dos tres cuatro cinco"))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 2, WordCount(" a\n\tb "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ñañ...", Truncate("ñañaña", 3))
}
