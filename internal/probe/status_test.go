package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		code     int
		expected string
	}{
		{0, "Invalid or unknown error"},
		{200, "OK"},
		{301, "Moved Permanently"},
		{404, "Not Found"},
		{418, "I'm a teapot"},
		{449, "Retry With"},
		{450, "Blocked by Windows Parental Controls"},
		{509, "Bandwidth Limit Exceeded"},
		{299, "Invalid or unknown error"},
		{999, "Invalid or unknown error"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, StatusLabel(tc.code), "code %d", tc.code)
	}
}
