package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"condo-extractor/internal/parser"
	"condo-extractor/internal/textnorm"
)

// Address tries the page headings, then the description meta tags, then
// the first text node that looks like a street address.
var Address = Chain[string]{
	addressFromHeadings,
	addressFromMeta,
	addressFromTextNodes,
}

// Price reads the price container.
var Price = Chain[int64]{
	func(page *parser.Page) (int64, bool) {
		digits, ok := numberIn(page, priceSelector)
		if !ok {
			return 0, false
		}
		return textnorm.ParseInt(digits)
	},
}

var Bedrooms = Chain[string]{
	func(page *parser.Page) (string, bool) { return numberIn(page, bedroomsSelector) },
}

var Bathrooms = Chain[string]{
	func(page *parser.Page) (string, bool) { return numberIn(page, bathroomsSelector) },
}

// Sqft looks in the characteristics section before falling back to the
// whole page.
var Sqft = Chain[string]{
	func(page *parser.Page) (string, bool) {
		section, ok := characteristicsText(page)
		if !ok {
			return "", false
		}
		return firstOf(section, areaLabeledRe, areaBareRe, areaLooseRe)
	},
	func(page *parser.Page) (string, bool) {
		return firstOf(page.Text, areaLabeledRe, areaBoundedRe)
	},
}

var YearOfConstruction = Chain[string]{
	func(page *parser.Page) (string, bool) {
		section, ok := characteristicsText(page)
		if !ok {
			return "", false
		}
		return firstGroup(yearBuiltRe, section)
	},
	func(page *parser.Page) (string, bool) {
		return firstGroup(yearBuiltRe, page.Text)
	},
}

func addressFromHeadings(page *parser.Page) (string, bool) {
	return firstMatchIn(page.Doc.Find(headingSelector), func(s *goquery.Selection) string {
		return s.Text()
	})
}

func addressFromMeta(page *parser.Page) (string, bool) {
	return firstMatchIn(page.Doc.Find(metaSelector), func(s *goquery.Selection) string {
		return s.AttrOr("content", "")
	})
}

func addressFromTextNodes(page *parser.Page) (string, bool) {
	n := findTextNode(page.Doc.Nodes, addressLeadRe)
	if n == nil {
		return "", false
	}
	return matchAddress(n.Data)
}

func firstMatchIn(sel *goquery.Selection, text func(*goquery.Selection) string) (string, bool) {
	var (
		address string
		found   bool
	)
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		address, found = matchAddress(text(s))
		return !found
	})
	return address, found
}

func matchAddress(raw string) (string, bool) {
	m := addressRe.FindStringSubmatch(textnorm.Normalize(raw))
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

func numberIn(page *parser.Page, selector string) (string, bool) {
	sel := page.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return textnorm.ExtractNumber(sel.Text())
}

// characteristicsText returns the normalized text of the container holding
// the "Caractéristiques" heading.
func characteristicsText(page *parser.Page) (string, bool) {
	n := findTextNode(page.Doc.Nodes, characteristicsRe)
	if n == nil || n.Parent == nil {
		return "", false
	}
	container := n.Parent
	if isHeading(container) || strings.TrimSpace(nodeText(container)) == strings.TrimSpace(n.Data) {
		if container.Parent != nil && container.Parent.Type == html.ElementNode {
			container = container.Parent
		}
	}
	return textnorm.Normalize(nodeText(container)), true
}

// findTextNode walks the trees in document order and returns the first
// text node whose normalized content matches re.
func findTextNode(roots []*html.Node, re *regexp.Regexp) *html.Node {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.TextNode && re.MatchString(textnorm.Normalize(n.Data)) {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	for _, root := range roots {
		if found := walk(root); found != nil {
			return found
		}
	}
	return nil
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
