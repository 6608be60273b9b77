package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse("2024-03-15T12:30:45.123456Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 30, 45, 123456000, time.UTC), got)

	_, err = Parse("2024-03-15T12:30:45.1Z")
	assert.NoError(t, err)

	for _, bad := range []string{"", "N/A", "2024-03-15", "2024-03-15T12:30:45Z", "15/03/2024 12:30"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-03-15T12:30:45.123456Z", "2024-03-15 12:30:45 UTC"},
		{"N/A", "N/A"},
		{"tomorrow", InvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Display(tt.raw))
		})
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"past deadline", "2024-01-01T00:00:00.000000Z", true},
		{"future deadline", "2030-01-01T00:00:00.000000Z", false},
		{"exactly now is not ended", "2025-06-01T00:00:00.000000Z", false},
		// FIXME: a malformed deadline reads as "registration open". Callers depend on it today.
		{"unparseable is treated as open", "garbage", false},
		{"missing is treated as open", "N/A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.raw, now))
		})
	}
}

func TestCheck_NonUTCNow(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-01-01 07:00 at UTC+8 is still 2023-12-31 23:00 UTC.
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, loc)
	assert.False(t, Check("2024-01-01T00:00:00.000000Z", now))
}

func TestEnded(t *testing.T) {
	assert.True(t, Ended("2024-01-01T00:00:00.000000Z"))
}
