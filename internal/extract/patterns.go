package extract

import "regexp"

const streetTypes = `(?:Rue|Avenue|Boulevard|Boul\.|Ave\.|Chemin|Ch\.|Place|Pl\.)`

var (
	// "1234, Rue Example, app. 567"
	addressRe     = regexp.MustCompile(`(?i)(\d+,\s*` + streetTypes + `[^,]+(?:,\s*(?:app\.|appartement)\s*\d+)?)`)
	addressLeadRe = regexp.MustCompile(`(?i)\d+,\s*` + streetTypes)

	characteristicsRe = regexp.MustCompile(`Caractéristiques`)

	areaLabeledRe = regexp.MustCompile(`(?i)Superficie (?:habitable|nette|brute)\s*(?::|de)?\s*(\d[\d\s,]+)\s*(?:pc|pi)`)
	areaBareRe    = regexp.MustCompile(`(?i)(\d[\d\s,]+)\s*(?:pc|pi)`)
	areaLooseRe   = regexp.MustCompile(`(?i)Superficie.*?(\d[\d\s,]+)\s*(?:pc|pi)`)
	areaBoundedRe = regexp.MustCompile(`(?i)(\d[\d\s,]+)\s*(?:pc|pi)\b`)

	yearBuiltRe = regexp.MustCompile(`(?i)Année\s+(?:de\s+)?construction\s*(?::|de)?\s*(\d{4})`)

	terrainRe  = regexp.MustCompile(`(?i)Terrain\s*:?\s*(\d[\d\s,]+)\s*\$`)
	buildingRe = regexp.MustCompile(`(?i)Bâtiment\s*:?\s*(\d[\d\s,]+)\s*\$`)
	totalRe    = regexp.MustCompile(`(?i)(?:Total|Évaluation municipale totale)\s*:?\s*(\d[\d\s,]+)\s*\$`)

	municipalTaxYearRe = regexp.MustCompile(`[Mm]unicipales\s*\(\d{4}\)\s*:?\s*(\d[\d\s,]+)\s*\$`)
	municipalTaxRe     = regexp.MustCompile(`[Mm]unicipales\s*:?\s*(\d[\d\s,]+)\s*\$`)
	schoolTaxYearRe    = regexp.MustCompile(`[Ss]colaires\s*\(\d{4}\)\s*:?\s*(\d[\d\s,]+)\s*\$`)
	schoolTaxRe        = regexp.MustCompile(`[Ss]colaires\s*:?\s*(\d[\d\s,]+)\s*\$`)
	condoFeeRe         = regexp.MustCompile(`Frais de copropriété\s*:?\s*(\d[\d\s,]+)\s*\$`)
)

// Selectors for the tagged elements of the listing page.
const (
	priceSelector     = ".price"
	bedroomsSelector  = ".cac"
	bathroomsSelector = ".sdb"
	headingSelector   = "h1,h2"
	metaSelector      = `meta[property="og:title"],meta[property="description"],meta[name="description"]`
)
