package extract

import (
	"condo-extractor/internal/parser"
	"condo-extractor/internal/textnorm"
)

// Financial holds the municipal assessment and the monthly charges of a
// listing. Tax and fee figures are monthly.
type Financial struct {
	Total          *int64
	Terrain        *int64
	Building       *int64
	TaxesMunicipal *int64
	TaxesSchool    *int64
	CondoFee       *int64
}

var (
	terrainChain  = Chain[int64]{largestIn(terrainRe)}
	buildingChain = Chain[int64]{largestIn(buildingRe)}
	totalChain    = Chain[int64]{largestIn(totalRe)}

	// Statements labeled with a year in parentheses are the annual ones.
	municipalTaxChain = Chain[int64]{largestIn(municipalTaxYearRe), largestIn(municipalTaxRe)}
	schoolTaxChain    = Chain[int64]{largestIn(schoolTaxYearRe), largestIn(schoolTaxRe)}
	condoFeeChain     = Chain[int64]{largestIn(condoFeeRe)}
)

// Financials scans the page text for the assessment and the annual charges.
// A missing total is the sum of terrain and building when both are known.
// Taxes and condo fees are converted to monthly amounts.
func Financials(page *parser.Page) Financial {
	var f Financial

	f.Terrain = optional[int64](terrainChain.Run(page))
	f.Building = optional[int64](buildingChain.Run(page))
	f.Total = optional[int64](totalChain.Run(page))
	if f.Total == nil && f.Terrain != nil && f.Building != nil {
		sum := *f.Terrain + *f.Building
		f.Total = &sum
	}

	f.TaxesMunicipal = monthly(municipalTaxChain.Run(page))
	f.TaxesSchool = monthly(schoolTaxChain.Run(page))
	f.CondoFee = monthly(condoFeeChain.Run(page))
	return f
}

// MonthlyFromAnnual divides an annual amount by twelve, rounding half to even.
func MonthlyFromAnnual(annual int64) int64 {
	return textnorm.Round(float64(annual) / 12)
}

func monthly(annual int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	m := MonthlyFromAnnual(annual)
	return &m
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
