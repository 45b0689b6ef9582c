package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	testcases := []struct {
		duration time.Duration
		expected string
	}{
		{
			duration: 2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second,
			expected: "2 days, 3 hours, 4 minutes, 5 seconds",
		},
		{
			duration: 24*time.Hour + time.Hour + time.Minute + time.Second,
			expected: "1 day, 1 hour, 1 minute, 1 second",
		},
		{
			duration: 0,
			expected: "",
		},
		{
			duration: 7 * 24 * time.Hour,
			expected: "7 days",
		},
		{
			duration: 59 * time.Second,
			expected: "59 seconds",
		},
		{
			duration: 3*time.Hour + 5*time.Second,
			expected: "3 hours, 5 seconds",
		},
		{
			// Sub-second remainders are truncated.
			duration: time.Second + 999*time.Millisecond,
			expected: "1 second",
		},
	}

	for _, tc := range testcases {
		require.Equal(t, tc.expected, FormatDuration(tc.duration))
	}
}
