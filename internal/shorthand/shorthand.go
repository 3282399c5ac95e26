// Package shorthand parses the suffixed size/throughput strings the driver
// CLIs accept, e.g. "20B" for 20 billion or "8G" for 8 gibibytes, depending
// on which base the caller's dimension uses.
package shorthand

import (
	"strconv"
	"strings"

	"gitlab.com/akita/nvwear/errs"
)

// Base1000 and Base1024 select the multiplier table a dimension uses:
// throughput/counts are base 1000, byte sizes are base 1024.
const (
	Base1000 = 1000
	Base1024 = 1024
)

// ToInt64 parses s, trimming a trailing K/M/B|G/T/Q suffix (case
// insensitive) and scaling the remaining integer mantissa by base raised to
// the appropriate power. A string with no recognized suffix is parsed as a
// plain integer.
func ToInt64(s string, base int64) (int64, error) {
	if base != Base1000 && base != Base1024 {
		return 0, &errs.ConfigError{Msg: "shorthand base must be 1000 or 1024"}
	}
	if s == "" {
		return 0, &errs.ConfigError{Msg: "empty shorthand value"}
	}

	mantissa := s
	multiplier := int64(1)

	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		multiplier = base
	case "M":
		multiplier = base * base
	case "B", "G":
		multiplier = base * base * base
	case "T":
		multiplier = base * base * base * base
	case "Q":
		multiplier = base * base * base * base * base
	}
	if multiplier != 1 {
		mantissa = s[:len(s)-1]
	}

	mant, err := strconv.ParseInt(mantissa, 10, 64)
	if err != nil {
		return 0, &errs.ConfigError{Msg: "invalid shorthand value " + s}
	}

	return mant * multiplier, nil
}
