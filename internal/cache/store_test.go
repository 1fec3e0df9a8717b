package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-extractor/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleRecord(id string) models.ListingRecord {
	return models.ListingRecord{
		Identifier:     id,
		URL:            "https://www.centris.ca/fr/condo~a-vendre~montreal-ville-marie/" + id,
		Address:        ptr("1234, Rue Example app. 5"),
		Price:          ptr(int64(450000)),
		Sqft:           ptr("850"),
		TaxesMunicipal: ptr(int64(300)),
		ExtractionDate: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestLookupMissing(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	rec, err := s.Lookup("123")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCommitThenLookup(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "data"), nil)

	require.NoError(t, s.Commit("16819211", sampleRecord("16819211")))

	rec, err := s.Lookup("16819211")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, sampleRecord("16819211"), *rec)

	raw, err := os.ReadFile(filepath.Join(dir, "data", "16819211.json"))
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "\n  \"identifier\": \"16819211\"")
	assert.Contains(t, text, `"bedrooms": null`)
	assert.Contains(t, text, `"price": 450000`)
	assert.Contains(t, text, `"condo~a-vendre~montreal-ville-marie`)
}

func TestCommitOverwrites(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	first := sampleRecord("1")
	second := sampleRecord("1")
	second.Price = ptr(int64(1))

	require.NoError(t, s.Commit("1", first))
	require.NoError(t, s.Commit("1", second))

	rec, err := s.Lookup("1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), *rec.Price)

	files, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, files, 1, "temporary files must not linger")
}

func TestLookupCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9.json"), []byte(`{"identifier": "9", "price": `), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10.json"), []byte(`{}`), 0o644))

	s := NewStore(dir, nil)
	_, err := s.Lookup("9")
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = s.Lookup("10")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	require.NoError(t, s.Commit("1", sampleRecord("1")))
	require.NoError(t, s.Commit("2", sampleRecord("2")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3.json"), []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.jpeg"), []byte{0xff, 0xd8}, 0o644))

	entries, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var ok, bad int
	for _, e := range entries {
		if e.Err != nil {
			bad++
			assert.Equal(t, "3.json", e.File)
			continue
		}
		ok++
		assert.True(t, strings.HasPrefix(e.File, e.Record.Identifier))
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, bad)

	assert.True(t, s.HasPhoto("1"))
	assert.False(t, s.HasPhoto("2"))
}

func TestScanMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"), nil)
	entries, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAtomic(dir, "42.jpeg", strings.NewReader("jpeg-bytes")))
	got, err := os.ReadFile(filepath.Join(dir, "42.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(got))
}
