package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValueDecimalString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"64250.123456", "64250.12"},
		{"64250.125", "64250.13"},
		{"0.5", "0.50"},
		{"100.0", "100.00"},
		{" 42.1 ", "42.10"},
	}
	for _, tt := range tests {
		got, err := NormalizeValue(tt.raw, 18)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestNormalizeValueFixedPoint(t *testing.T) {
	tests := []struct {
		raw   string
		scale int
		want  string
	}{
		{"3541230000000000000000", 18, "3541.23"},
		{"64250120000000000000000", 18, "64250.12"},
		{"1000000000000000000", 18, "1.00"},
		{"1500000000000000000", 18, "1.50"},
		{"123456", 4, "12.35"},
		{"5", 2, "0.05"},
	}
	for _, tt := range tests {
		got, err := NormalizeValue(tt.raw, tt.scale)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestNormalizeValueErrors(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "12a34", "1.2.3"} {
		_, err := NormalizeValue(raw, 18)
		assert.Error(t, err, raw)
	}
}
