package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  京都  ", "寺院 ", " 紅葉"},
			expected: []string{"京都", "寺院", "紅葉"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"沖縄", "海", "沖縄", "琉球文化", "海"},
			expected: []string{"沖縄", "海", "琉球文化"},
		},
		{
			name:     "removes blanks",
			input:    []string{"パリ", "", "   ", "美術館"},
			expected: []string{"パリ", "美術館"},
		},
		{
			name:     "preserves case",
			input:    []string{"Paris", "paris"},
			expected: []string{"Paris", "paris"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestAppendUnique(t *testing.T) {
	tags := []string{"京都"}

	tags, changed := AppendUnique(tags, " 寺院 ")
	assert.True(t, changed)
	assert.Equal(t, []string{"京都", "寺院"}, tags)

	tags, changed = AppendUnique(tags, "京都")
	assert.False(t, changed)
	assert.Len(t, tags, 2)

	tags, changed = AppendUnique(tags, "   ")
	assert.False(t, changed)
	assert.Len(t, tags, 2)
}
