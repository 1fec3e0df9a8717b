
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"condo-extractor/internal/textnorm"
)

// Page is a parsed listing document. Text holds the normalized text of the
// whole document with scripts and styles removed.
type Page struct {
	Doc   *goquery.Document
	Title string
	Text  string
}

type Parser struct{}

func New() *Parser { return &Parser{} }

// Parse decodes r to UTF-8 using the declared or sniffed charset and builds
// a queryable document tree.
func (p *Parser) Parse(r io.Reader, contentType string) (*Page, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument prepares an already parsed document.
func FromDocument(doc *goquery.Document) *Page {
	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return &Page{
		Doc:   doc,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  textnorm.Normalize(doc.Text()),
	}
}
