
package models

import "time"

// ListingRecord is the normalized view of one listing page. It is written
// once per identifier and served verbatim afterwards. Nil fields were not
// found on the page.
type ListingRecord struct {
	Identifier string  `json:"identifier"`
	URL        string  `json:"url"`
	Address    *string `json:"address"`
	Price      *int64  `json:"price"`
	Bedrooms   *string `json:"bedrooms"`
	Bathrooms  *string `json:"bathrooms"`
	Sqft       *string `json:"sqft"`
	YearBuilt  *string `json:"year_of_construction"`

	MunicipalAssessmentTotal *int64 `json:"municipal_assessment_total"`
	MunicipalTerrain         *int64 `json:"municipal_terrain"`
	MunicipalBuilding        *int64 `json:"municipal_building"`

	// Monthly amounts.
	TaxesMunicipal *int64 `json:"taxes_municipal"`
	TaxesSchool    *int64 `json:"taxes_school"`
	CondoFee       *int64 `json:"condo_fee"`

	PhotoURL       *string   `json:"photo_url"`
	PhotoPath      *string   `json:"photo_path"`
	ExtractionDate time.Time `json:"extraction_date"`
}

// FeedDataPoint is the reduced projection of a cached record used by the chart feed.
type FeedDataPoint struct {
	Price        int64   `json:"price"`
	Assessment   *int64  `json:"assessment"`
	Sqft         *int64  `json:"sqft"`
	PricePerSqft *int64  `json:"price_per_sqft"`
	Address      string  `json:"address"`
	Identifier   string  `json:"identifier"`
	PhotoPath    *string `json:"photo_path"`
}

type ExtractResult struct {
	Record    ListingRecord `json:"data"`
	FromCache bool          `json:"fromCache"`
}

// BatchLine is one line of a batch extraction report.
type BatchLine struct {
	Input  string         `json:"input"`
	Result *ExtractResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}
