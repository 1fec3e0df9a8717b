package listing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL rejects URLs outside the marketplace's listing pages.
	ErrInvalidURL = errors.New("invalid listing url")
	// ErrNoIdentifier rejects listing URLs that carry no numeric identifier.
	ErrNoIdentifier = errors.New("listing url has no identifier")
)

const (
	// DefaultListingPattern accepts French-language Centris pages.
	DefaultListingPattern = `^https?://(?:www\.)?centris\.ca/fr/`

	canonicalListingURL = "https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/%s"
)

var (
	identifierRe = regexp.MustCompile(`/(\d+)(?:\?|$)`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
)

// ResolveIdentifier returns the digits that end the URL path, just before
// the query string or the end of the URL.
func ResolveIdentifier(rawURL string) (string, bool) {
	m := identifierRe.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// BuildURL turns a bare identifier into a listing URL. Anything else is
// returned unchanged.
func BuildURL(input string) string {
	input = strings.TrimSpace(input)
	if digitsRe.MatchString(input) {
		return fmt.Sprintf(canonicalListingURL, input)
	}
	return input
}

// Validator gates incoming URLs before any network access.
type Validator struct {
	pattern *regexp.Regexp
}

func NewValidator(pattern *regexp.Regexp) *Validator {
	return &Validator{pattern: pattern}
}

// Validate checks rawURL against the listing prefix and resolves its identifier.
func (v *Validator) Validate(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if !v.pattern.MatchString(rawURL) {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	id, ok := ResolveIdentifier(rawURL)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoIdentifier, rawURL)
	}
	return id, nil
}
