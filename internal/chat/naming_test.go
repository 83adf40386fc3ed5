package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Weather in London", "Weather in London"},
		{"strips double quotes", `"Weather in London"`, "Weather in London"},
		{"strips single quotes", "'Weather' talk", "Weather talk"},
		{"trims whitespace", "  Title  \n", "Title"},
		{"empty", "", ""},
		{
			"truncates long titles",
			strings.Repeat("a", 60),
			strings.Repeat("a", 47) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.input))
		})
	}

	t.Run("truncated length stays at the cap", func(t *testing.T) {
		got := SanitizeTitle(strings.Repeat("x", 200))
		assert.Len(t, []rune(got), 50)
	})
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", "New Conversation"},
		{"whitespace only", "   ", "New Conversation"},
		{"short input", "hi there", "hi there"},
		{"exactly three words", "one two three", "one two three"},
		{"long input", "what is the weather today", "what is the..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackTitle(tt.input))
		})
	}
}
