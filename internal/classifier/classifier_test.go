
package classifier

import (
	"strings"
	"testing"

	"condo-extractor/internal/parser"
)

func parse(t *testing.T, body string) *parser.Page {
	t.Helper()
	p, err := parser.New().Parse(strings.NewReader(body), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func TestClassify(t *testing.T) {
	cl := New()

	listing := parse(t, `<html><head><title>Condo à vendre</title></head><body>
<div class="price">450 000 $</div>
<h2>Caractéristiques</h2>
<p>Évaluation municipale</p></body></html>`)
	c := cl.Classify(listing)
	if c.Label != LabelListing {
		t.Fatalf("want listing, got %s (%v)", c.Label, c.Reason)
	}
	if _, ok := c.Reason["characteristics"]; !ok {
		t.Fatalf("expected characteristics reason, got %v", c.Reason)
	}

	blocked := parse(t, `<html><head><title>Request unsuccessful</title></head><body>Incapsula incident</body></html>`)
	if got := cl.Classify(blocked).Label; got != LabelBlocked {
		t.Fatalf("want blocked, got %s", got)
	}

	search := parse(t, `<html><body><h1>Condos</h1><p>1 245 résultats</p></body></html>`)
	if got := cl.Classify(search).Label; got != LabelSearch {
		t.Fatalf("want search, got %s", got)
	}

	other := parse(t, `<html><body><p>Bienvenue</p></body></html>`)
	if got := cl.Classify(other).Label; got != LabelOther {
		t.Fatalf("want other, got %s", got)
	}
}
