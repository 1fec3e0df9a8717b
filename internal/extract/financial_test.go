package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialsDerivesTotal(t *testing.T) {
	page := mustPage(t, `<html><body>
<h3>Évaluation municipale</h3>
<div class="fin"><div class="label">Terrain</div><div class="valeur">150 000 $</div></div>
<div class="fin"><div class="label">Bâtiment</div><div class="valeur">250 000 $</div></div>
</body></html>`)

	f := Financials(page)
	require.NotNil(t, f.Terrain)
	require.NotNil(t, f.Building)
	require.NotNil(t, f.Total)
	assert.Equal(t, int64(150000), *f.Terrain)
	assert.Equal(t, int64(250000), *f.Building)
	assert.Equal(t, int64(400000), *f.Total)
}

func TestFinancialsExplicitTotalWins(t *testing.T) {
	page := mustPage(t, `<html><body>
<p>Terrain : 150 000 $</p>
<p>Bâtiment : 250 000 $</p>
<p>Évaluation municipale totale : 410 000 $</p>
</body></html>`)

	f := Financials(page)
	require.NotNil(t, f.Total)
	assert.Equal(t, int64(410000), *f.Total)
}

func TestFinancialsLargestTerrainMatch(t *testing.T) {
	page := mustPage(t, `<html><body>
<p>Terrain 100 000 $</p>
<p>Terrain 120 000 $</p>
</body></html>`)

	f := Financials(page)
	require.NotNil(t, f.Terrain)
	assert.Equal(t, int64(120000), *f.Terrain)
	assert.Nil(t, f.Building)
	assert.Nil(t, f.Total, "total needs both terrain and building")
}

func TestFinancialsMonthlyCharges(t *testing.T) {
	page := mustPage(t, `<html><body>
<h3>Taxes</h3>
<p>Municipales (2024) 3 600 $</p>
<p>Municipales 900 $</p>
<p>Scolaires 3 650 $</p>
<h3>Dépenses</h3>
<p>Frais de copropriété 8 628 $</p>
</body></html>`)

	f := Financials(page)
	require.NotNil(t, f.TaxesMunicipal)
	require.NotNil(t, f.TaxesSchool)
	require.NotNil(t, f.CondoFee)
	assert.Equal(t, int64(300), *f.TaxesMunicipal)
	assert.Equal(t, int64(304), *f.TaxesSchool)
	assert.Equal(t, int64(719), *f.CondoFee)
}

func TestFinancialsTaxYearQualifierPreferred(t *testing.T) {
	// Without the qualifier the larger undated figure would win.
	page := mustPage(t, `<html><body>
<p>Municipales (2023) 1 200 $</p>
<p>Municipales 6 000 $</p>
</body></html>`)

	f := Financials(page)
	require.NotNil(t, f.TaxesMunicipal)
	assert.Equal(t, int64(100), *f.TaxesMunicipal)
}

func TestMonthlyFromAnnual(t *testing.T) {
	cases := map[int64]int64{
		3600: 300,
		3650: 304,
		0:    0,
		18:   2,
		30:   2,
	}
	for annual, want := range cases {
		assert.Equal(t, want, MonthlyFromAnnual(annual), "annual %d", annual)
	}
}
