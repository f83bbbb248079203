package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "fits", text: "hello", limit: 10, want: []string{"hello"}},
		{name: "no limit", text: "hello", limit: 0, want: []string{"hello"}},
		{name: "packs lines", text: "a\nb\nc", limit: 3, want: []string{"a\nb", "c"}},
		{name: "breaks on lines", text: "1. Kitchen\n2. Bedroom", limit: 10, want: []string{"1. Kitchen", "2. Bedroom"}},
		{name: "cuts oversized line", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "counts runes", text: "héllo wörld", limit: 5, want: []string{"héllo", " wörl", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMessage(tt.text, tt.limit))
		})
	}
}

func TestSplitMessageKeepsContent(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("x", i%37+1))
	}
	text := strings.Join(lines, "\n")

	chunks := SplitMessage(text, 100)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
	assert.Equal(t, text, strings.Join(chunks, "\n"))
}
