// Package quantity converts hash-rate text such as "1.5 TH/s" to H/s and back.
package quantity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned for text that is not "<number> <unit>"
var ErrMalformed = errors.New("malformed quantity")

type unit struct {
	name   string
	factor float64
}

// largest first
var units = []unit{
	{"TH/s", 1e12},
	{"GH/s", 1e9},
	{"MH/s", 1e6},
	{"KH/s", 1e3},
	{"H/s", 1},
}

// Parse reads a quantity like "1.5 TH/s" and returns it in H/s
func Parse(text string) (float64, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, text, err)
	}

	for _, u := range units {
		if u.name == fields[1] {
			return value * u.factor, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrMalformed, fields[1])
}

// Unit returns the largest unit not exceeding hs and its factor.
// Values below 1 KH/s, including zero and negatives, use plain H/s.
func Unit(hs float64) (string, float64) {
	for _, u := range units {
		if hs >= u.factor {
			return u.name, u.factor
		}
	}
	return "H/s", 1
}

// Format renders H/s using the unit chosen by Unit
func Format(hs float64) string {
	name, factor := Unit(hs)
	return strconv.FormatFloat(hs/factor, 'f', -1, 64) + " " + name
}
