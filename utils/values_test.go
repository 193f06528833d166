package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpan(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"01:00:00", time.Hour},
		{"00:45:00", 45 * time.Minute},
		{"1 02:30:00", 26*time.Hour + 30*time.Minute},
		{"2 days, 00:00:01", 48*time.Hour + time.Second},
		{"10:30", 10*time.Minute + 30*time.Second},
		{"90", 90 * time.Second},
		{"00:00:01.5", 1500 * time.Millisecond},
		{"1h30m", 90 * time.Minute},
		{"106751 00:00:00", 106751 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseSpan(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{
		"", "soon", "1:2:3:4", "-",
		"106752 00:00:00",
		"213504 00:00:00",
		"5124096:00:00",
		"99999999999999999999",
		"106751 23:59:59",
	} {
		_, err := ParseSpan(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, bad)
	}
}

func TestFormatSpan(t *testing.T) {
	assert.Equal(t, "01:00:00", FormatSpan(time.Hour))
	assert.Equal(t, "1 02:30:00", FormatSpan(26*time.Hour+30*time.Minute))
	assert.Equal(t, "00:00:01.500000", FormatSpan(1500*time.Millisecond))
	assert.Equal(t, "-00:05:00", FormatSpan(-5*time.Minute))
}

func TestParsePrice(t *testing.T) {
	for _, ok := range []string{"0", "50", "50.00", "12.5", " 999999.99 "} {
		_, err := ParsePrice(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "abc", "-0.01", "1.001", "1000000", "1e7"} {
		_, err := ParsePrice(bad)
		assert.ErrorIs(t, err, ErrInvalidPrice, bad)
	}
}

func TestParseRating(t *testing.T) {
	for _, ok := range []string{"1", "3", "5", " 4 "} {
		_, err := ParseRating(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"0", "6", "-1", "4.5", "", "five"} {
		_, err := ParseRating(bad)
		assert.ErrorIs(t, err, ErrInvalidRating, bad)
	}
}
