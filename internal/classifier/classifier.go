
package classifier

import (
	"regexp"
	"strings"

	"condo-extractor/internal/parser"
)

const (
	LabelListing = "listing"
	LabelBlocked = "blocked"
	LabelSearch  = "search"
	LabelOther   = "other"
)

// Classification is a best-effort guess of what kind of page was fetched.
type Classification struct {
	Label  string            `json:"label"`
	Reason map[string]string `json:"reason,omitempty"`
}

type Classifier struct{}

func New() *Classifier { return &Classifier{} }

var (
	blockedRe = regexp.MustCompile(`(?i)captcha|access denied|accès refusé|request unsuccessful|incapsula`)
	searchRe  = regexp.MustCompile(`(?i)\d[\d\s]*\s+(?:résultats|propriétés trouvées)|aucun résultat`)
	listingRe = regexp.MustCompile(`(?i)à vendre|à louer`)
	moneyRe   = regexp.MustCompile(`\d[\d\s,]*\s?\$`)
	financeRe = regexp.MustCompile(`(?i)évaluation municipale|taxes municipales|frais de copropriété`)
)

// Classify looks for the markers of a listing page. Anything with fewer
// than two listing markers is labeled by what it most resembles instead.
func (c *Classifier) Classify(p *parser.Page) Classification {
	text := p.Text
	reason := map[string]string{}

	if blockedRe.MatchString(text) || blockedRe.MatchString(p.Title) {
		reason["blocked"] = "bot challenge or access denial"
		return Classification{Label: LabelBlocked, Reason: reason}
	}

	if p.Doc.Find(".price").Length() > 0 && moneyRe.MatchString(text) {
		reason["price"] = "price container with amount"
	}
	if strings.Contains(text, "Caractéristiques") {
		reason["characteristics"] = "characteristics section"
	}
	if financeRe.MatchString(text) {
		reason["financial"] = "assessment or tax figures"
	}
	if listingRe.MatchString(p.Title) {
		reason["title"] = "title names an offer"
	}
	if len(reason) >= 2 {
		return Classification{Label: LabelListing, Reason: reason}
	}

	if searchRe.MatchString(text) {
		reason["search"] = "result count"
		return Classification{Label: LabelSearch, Reason: reason}
	}
	return Classification{Label: LabelOther, Reason: reason}
}
