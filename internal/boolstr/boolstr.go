// Package boolstr parses the small set of human-typed boolean spellings the
// CLI flags accept (e, on, true, y, yes, 1, and their opposites).
package boolstr

import "strings"

var truthy = map[string]bool{
	"e": true, "enabled": true, "on": true, "t": true,
	"true": true, "y": true, "yes": true, "1": true,
}

var falsy = map[string]bool{
	"d": true, "disabled": true, "off": true, "f": true,
	"false": true, "n": true, "no": true, "0": true,
}

// Parse returns the boolean value of s (case-insensitive) and true if s was
// a recognized spelling, or false, false otherwise.
func Parse(s string) (value bool, ok bool) {
	s = strings.ToLower(s)
	if truthy[s] {
		return true, true
	}
	if falsy[s] {
		return false, true
	}
	return false, false
}
