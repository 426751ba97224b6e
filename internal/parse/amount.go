// Package parse provides tokenization helpers for free-form expense messages:
// amount normalization and multi-expense splitting.
package parse

import (
	"strconv"
	"strings"
)

// magnitudeSuffixes maps trailing shorthand to multipliers: k thousand,
// l lakh, m million, cr crore.
var magnitudeSuffixes = []struct {
	suffix string
	factor float64
}{
	{"k", 1e3},
	{"l", 1e5},
	{"m", 1e6},
	{"cr", 1e7},
}

// currencyMarkers are stripped from either end of an amount token.
var currencyMarkers = []string{"pkr", "rupees", "rs.", "rs"}

// NormalizeAmount parses a free-form amount token ("500", "2k", "1.5k",
// "1,000", "1cr", "rs 750") into base currency units. Returns nil when the
// token is not a parsable amount; it never fails the turn.
func NormalizeAmount(raw string) *float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}

	for _, marker := range currencyMarkers {
		s = strings.TrimSpace(strings.TrimPrefix(s, marker))
		s = strings.TrimSpace(strings.TrimSuffix(s, marker))
	}
	if s == "" {
		return nil
	}

	factor := 1.0
	for _, m := range magnitudeSuffixes {
		if strings.HasSuffix(s, m.suffix) {
			factor = m.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, m.suffix))
			break
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	value *= factor
	return &value
}
