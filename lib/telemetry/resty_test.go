package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactURL(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{
			in:       "https://www.trailforks.com/api/1/regions?app_id=1&app_secret=abc&rows=10",
			expected: "https://www.trailforks.com/api/1/regions?app_id=1&app_secret=REDACTED&rows=10",
		},
		{
			in:       "https://www.trailforks.com/api/1/regions?app_secret=abc",
			expected: "https://www.trailforks.com/api/1/regions?app_secret=REDACTED",
		},
		{
			in:       "https://www.trailforks.com/profile/someone/",
			expected: "https://www.trailforks.com/profile/someone/",
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, redactURL(test.in))
	}
}
