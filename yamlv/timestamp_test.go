package yamlv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2001-12-14", true},
		{"  2001-12-14  ", true},
		{"2001-12-14t21:59:43.10-05:00", true},
		{"2001-12-14T21:59:43Z", true},
		{"2001-12-14 21:59:43.10 -5", true},
		{"2001-12-14 21:59:43.10 Z", true},
		{"2001-12-15 2:59:43.10", true},
		{"2002-12-14T21:59:43+0530", true},
		{"2002-1-4T21:59:43", true},

		{"2001-1-4", false},
		{"01-12-14", false},
		{"2001-12-14T", false},
		{"2001-12-14T21:59", false},
		{"2001-12-14T21:5:43", false},
		{"2001-12-14T21:59:4", false},
		{"2001-12-14T21:59:43+", false},
		{"2001-12-14T21:59:43+12345", false},
		{"2001-12-14T21:59:43+05:3", false},
		{"2001-12-14T21:59:43 UTC", false},
		{"2001-12-14x", false},
		{"2001/12/14", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimestamp(tt.in))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2001-12-14", time.Date(2001, 12, 14, 0, 0, 0, 0, time.UTC)},
		{"2001-12-14T21:59:43Z", time.Date(2001, 12, 14, 21, 59, 43, 0, time.UTC)},
		{"2001-12-14t21:59:43.10-05:00", time.Date(2001, 12, 15, 2, 59, 43, 100000000, time.UTC)},
		{"2001-12-14 21:59:43.10 -5", time.Date(2001, 12, 15, 2, 59, 43, 100000000, time.UTC)},
		{"2002-12-14T21:59:43+0530", time.Date(2002, 12, 14, 16, 29, 43, 0, time.UTC)},
		{"2001-12-15 2:59:43.1234567891", time.Date(2001, 12, 15, 2, 59, 43, 123456789, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseTimestamp_OutOfRange(t *testing.T) {
	for _, in := range []string{
		"2001-13-01",
		"2001-02-29",
		"2001-12-14T24:00:00",
		"2001-12-14T21:60:00",
		"2001-12-14T21:59:43+25",
		"not a date",
	} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}

	_, err := ParseTimestamp("2004-02-29")
	assert.NoError(t, err)
}
