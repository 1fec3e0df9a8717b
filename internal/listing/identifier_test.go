package listing

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentifier(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/16819211", "16819211", true},
		{"https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/16819211?view=Summary", "16819211", true},
		{"https://www.centris.ca/fr/condo/12/34", "34", true},
		{"https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/", "", false},
		{"https://www.centris.ca/fr/condo/12a", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveIdentifier(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t,
		"https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/16819211",
		BuildURL(" 16819211 "))
	assert.Equal(t, "https://example.com/1", BuildURL("https://example.com/1"))
}

func TestValidate(t *testing.T) {
	v := NewValidator(regexp.MustCompile(DefaultListingPattern))

	id, err := v.Validate("https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/16819211")
	require.NoError(t, err)
	assert.Equal(t, "16819211", id)

	id, err = v.Validate("http://centris.ca/fr/condo/77?lang=fr")
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	for _, bad := range []string{"", "   ", "https://example.com/listing/1", "https://www.centris.ca/en/condo/1"} {
		_, err := v.Validate(bad)
		assert.True(t, errors.Is(err, ErrInvalidURL), "%q: %v", bad, err)
	}

	_, err = v.Validate("https://www.centris.ca/fr/condo~a-vendre")
	assert.ErrorIs(t, err, ErrNoIdentifier)
}
