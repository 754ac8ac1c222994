package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"1.5d", 36 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"900", 15 * time.Minute},
		{" 30s ", 30 * time.Second},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		require.NoError(t, err, "input: %q", c.in)
		assert.Equal(t, c.want, got, "input: %q", c.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "d", "xd", "0", "-5m", "15 minutes"} {
		_, err := Parse(in)
		assert.Error(t, err, "input: %q", in)
	}
}
