// Package extract recovers listing fields from a parsed listing page. Each
// field is an ordered chain of independent strategies; the first strategy
// that finds a value wins.
package extract

import (
	"regexp"

	"condo-extractor/internal/parser"
	"condo-extractor/internal/textnorm"
)

// Strategy looks for one field on a page. It reports false when the value
// is not there; a miss is never an error.
type Strategy[T any] func(page *parser.Page) (T, bool)

// Chain is an ordered list of strategies for one field.
type Chain[T any] []Strategy[T]

// Run evaluates the strategies in order and stops at the first hit.
func (c Chain[T]) Run(page *parser.Page) (T, bool) {
	for _, s := range c {
		if v, ok := s(page); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// largestIn builds a strategy that applies the largest-match rule to the
// whole page text.
func largestIn(re *regexp.Regexp) Strategy[int64] {
	return func(page *parser.Page) (int64, bool) {
		return textnorm.LargestMatch(re, page.Text)
	}
}

// firstGroup returns capture group 1 of the first match, with separators
// stripped.
func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := textnorm.StripSeparators(m[1])
	if v == "" {
		return "", false
	}
	return v, true
}

// firstOf tries each pattern against text in order.
func firstOf(text string, patterns ...*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if v, ok := firstGroup(re, text); ok {
			return v, true
		}
	}
	return "", false
}
