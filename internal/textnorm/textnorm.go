// Package textnorm cleans the loosely formatted text found in listing pages
// and turns it into digit strings and integers.
package textnorm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// a run of digits, spaces, dots and commas holding at least one digit
	numberRunRe = regexp.MustCompile(`[\d\s.,]*\d[\d\s.,]*`)
	separatorRe = regexp.MustCompile(`[\s,]`)
)

// Normalize replaces non-breaking spaces, collapses whitespace runs to a
// single space and trims the result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ReplaceAll(text, "\u00a0", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractNumber returns the first number-like run of text with spaces and
// commas removed. Dots are kept, so "2.5" stays "2.5" while "1 234,00"
// becomes "123400".
func ExtractNumber(text string) (string, bool) {
	s := Normalize(text)
	if s == "" {
		return "", false
	}
	run := numberRunRe.FindString(s)
	if run == "" {
		return "", false
	}
	digits := StripSeparators(run)
	digits = strings.Trim(digits, ".")
	if digits == "" {
		return "", false
	}
	return digits, true
}

// StripSeparators removes whitespace and commas used as thousands separators.
func StripSeparators(s string) string {
	return separatorRe.ReplaceAllString(s, "")
}

// ParseInt converts a digit string produced by ExtractNumber. Anything that
// is not a plain base-10 integer reports false.
func ParseInt(digits string) (int64, bool) {
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LargestMatch runs re over text and returns the greatest integer captured
// by group 1 across all matches. Matches whose group does not reduce to an
// integer are ignored.
func LargestMatch(re *regexp.Regexp, text string) (int64, bool) {
	var (
		best  int64
		found bool
	)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		digits, ok := ExtractNumber(m[1])
		if !ok {
			continue
		}
		n, ok := ParseInt(digits)
		if !ok {
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	return best, found
}

// Round rounds half to even, which is how the listing figures have always
// been rounded.
func Round(x float64) int64 {
	return int64(math.RoundToEven(x))
}
