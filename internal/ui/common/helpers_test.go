package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short name within limit", "Alice", 10, "Alice"},
		{"exact length", "HelloWorld", 10, "HelloWorld"},
		{"long name truncated", "VeryLongPlayerName", 10, "VeryLongP…"},
		{"chinese name truncated", "可爱的龙猫", 4, "可爱的…"},
		{"empty name", "", 10, ""},
		{"single char limit", "Hello", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxLen))
		})
	}
}

func TestSignedScore(t *testing.T) {
	t.Parallel()

	assert.Contains(t, SignedScore(12), "+12")
	assert.Contains(t, SignedScore(-4), "-4")
	assert.Equal(t, "0", SignedScore(0))
}
