
package parser

import (
	"strings"
	"testing"
)

const sampleHTML = `<!doctype html><html lang="fr"><head>
<title>Condo à vendre</title>
<script>var price = "999 999 $";</script>
<style>.price { color: red; }</style>
</head><body>
<h1>1234, Rue Example</h1>
<div class="price"><span>450&nbsp;000&nbsp;$</span></div>
</body></html>`

func TestParse(t *testing.T) {
	p := New()
	page, err := p.Parse(strings.NewReader(sampleHTML), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if page.Title != "Condo à vendre" {
		t.Fatalf("want title %q, got %q", "Condo à vendre", page.Title)
	}
	if strings.Contains(page.Text, "999") {
		t.Fatalf("script text leaked into page text: %q", page.Text)
	}
	if !strings.Contains(page.Text, "450 000 $") {
		t.Fatalf("expected normalized price in text, got %q", page.Text)
	}
	if page.Doc.Find(".price").Length() != 1 {
		t.Fatal("price element missing from document")
	}
}

func TestParseLatin1(t *testing.T) {
	// "Année" encoded as ISO-8859-1
	body := "<html><body><p>Ann\xe9e de construction 1998</p></body></html>"
	page, err := New().Parse(strings.NewReader(body), "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !strings.Contains(page.Text, "Année de construction 1998") {
		t.Fatalf("charset not decoded: %q", page.Text)
	}
}
