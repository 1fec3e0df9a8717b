package extract

import "condo-extractor/internal/parser"

// Field names as they appear in the cached record.
const (
	FieldAddress   = "address"
	FieldPrice     = "price"
	FieldBedrooms  = "bedrooms"
	FieldBathrooms = "bathrooms"
	FieldSqft      = "sqft"
	FieldYearBuilt = "year_of_construction"
	FieldTotal     = "municipal_assessment_total"
	FieldTerrain   = "municipal_terrain"
	FieldBuilding  = "municipal_building"
	FieldTaxesMun  = "taxes_municipal"
	FieldTaxesSch  = "taxes_school"
	FieldCondoFee  = "condo_fee"
)

// Fields is everything the pipeline recovered from one page.
type Fields struct {
	Address   *string
	Price     *int64
	Bedrooms  *string
	Bathrooms *string
	Sqft      *string
	YearBuilt *string
}

// Run applies the descriptive field chains to the page. Misses lists the
// fields that no strategy could find, in record order. The financial block
// is derived separately by Financials.
func Run(page *parser.Page) (fields Fields, misses []string) {
	fields.Address = optional[string](Address.Run(page))
	fields.Price = optional[int64](Price.Run(page))
	fields.Bedrooms = optional[string](Bedrooms.Run(page))
	fields.Bathrooms = optional[string](Bathrooms.Run(page))
	fields.Sqft = optional[string](Sqft.Run(page))
	fields.YearBuilt = optional[string](YearOfConstruction.Run(page))

	check := missCollector(&misses)
	check(FieldAddress, fields.Address == nil)
	check(FieldPrice, fields.Price == nil)
	check(FieldBedrooms, fields.Bedrooms == nil)
	check(FieldBathrooms, fields.Bathrooms == nil)
	check(FieldSqft, fields.Sqft == nil)
	check(FieldYearBuilt, fields.YearBuilt == nil)
	return fields, misses
}

// Misses lists the financial fields that were not found.
func (f Financial) Misses() []string {
	var misses []string
	check := missCollector(&misses)
	check(FieldTotal, f.Total == nil)
	check(FieldTerrain, f.Terrain == nil)
	check(FieldBuilding, f.Building == nil)
	check(FieldTaxesMun, f.TaxesMunicipal == nil)
	check(FieldTaxesSch, f.TaxesSchool == nil)
	check(FieldCondoFee, f.CondoFee == nil)
	return misses
}

func missCollector(misses *[]string) func(name string, missing bool) {
	return func(name string, missing bool) {
		if missing {
			*misses = append(*misses, name)
		}
	}
}
