// Package duration parses the expiry strings used for token lifetimes.
//
// Accepted forms: Go durations ("90s", "15m", "1h30m"), day and week suffixes
// ("7d", "2w"), and bare integers, which are read as seconds.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Parse converts s into a positive time.Duration.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return positive(s, time.Duration(n)*time.Second)
	}
	switch unit := s[len(s)-1]; unit {
	case 'd', 'w':
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		mult := day
		if unit == 'w' {
			mult = week
		}
		return positive(s, time.Duration(n*float64(mult)))
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return positive(s, d)
}

func positive(s string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
