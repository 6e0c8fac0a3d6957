package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "punctuation and case", input: "Kalevala : runoja /", expected: "kalevalarunoja"},
		{name: "diacritics", input: "Äänestäjän öljyä", expected: "aanestajanoljya"},
		{name: "digits kept", input: "Vuosi 1984!", expected: "vuosi1984"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compact(tt.input))
		})
	}
}

func TestPhrase(t *testing.T) {
	assert.Equal(t, "Sota ja rauha osa 1", Phrase("Sota ja rauha : osa 1."))
	assert.Equal(t, "Ääni", Phrase("  [Ääni]  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc def", 4))
	assert.Equal(t, "äö", Truncate("äöü", 2))
	assert.Equal(t, "short", Truncate("short", 30))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"äiti", "aiti", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestDistancePercentage(t *testing.T) {
	assert.InDelta(t, 10.0, DistancePercentage("abcdefghij", "abcdefghix"), 1e-9)
	assert.Equal(t, 0.0, DistancePercentage("", ""))
}
