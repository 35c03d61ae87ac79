package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService("", arbor.NewLogger())
	require.NoError(t, err)
	return svc
}

func TestCleanCountryName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ukraine (*)", "Ukraine"},
		{"Ukraine(*)", "Ukraine"},
		{"Germany", "Germany"},
		{"Bosnia and Herzegovina", "Bosnia and Herzegovina"},
		{"  Italy  ", "Italy"},
		{"Chile (note) extra", "Chile extra"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCountryName(tt.in), "in=%q", tt.in)
	}
}

func TestCountryTable_Resolution(t *testing.T) {
	table := DefaultCountryTable()

	// The spreads dataset's "UK" means Ukraine.
	assert.Equal(t, "ua", table.Code("UK"))
	assert.Equal(t, "Ukraine", table.Canonical("UK"))

	// The real United Kingdom keeps its own flag.
	assert.Equal(t, "gb", table.Code("United Kingdom"))

	assert.Equal(t, "us", table.Code("USA"))
	assert.Equal(t, "de", table.Code("Germany"))
	assert.Equal(t, "ua", table.Code("Ukraine (*)"))

	// Unknown countries fall back to the first two letters.
	assert.Equal(t, "at", table.Code("Atlantis"))
}

func TestLoadCountryTable_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countries.yaml")
	content := "aliases:\n  Holland: Netherlands\ncodes:\n  Atlantis: aq\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadCountryTable(path)
	require.NoError(t, err)

	assert.Equal(t, "nl", table.Code("Holland"))
	assert.Equal(t, "aq", table.Code("Atlantis"))
	// Defaults survive the merge.
	assert.Equal(t, "de", table.Code("Germany"))
}

func TestAnnotateRatings(t *testing.T) {
	svc := newTestService(t)

	rows := svc.AnnotateRatings([]models.CountryRatings{
		{Country: "Germany", SP: "AAA", Moodys: "Aaa", Fitch: "AAA"},
		{Country: "Greece", SP: "BBB-    [upgrade]", Moodys: "Ba1", Fitch: "BBB-"},
		{Country: "Nowhere", SP: "N/A", Moodys: "NR", Fitch: "-"},
	})
	require.Len(t, rows, 3)

	germany := rows[0]
	require.NotNil(t, germany.Average)
	assert.InDelta(t, 22.0, *germany.Average, 1e-9)
	assert.Equal(t, 3, germany.Count)

	greece := rows[1]
	require.NotNil(t, greece.SPScore)
	assert.InDelta(t, 13.0+1.0/3.0, *greece.SPScore, 1e-9)
	require.NotNil(t, greece.Average)
	assert.Equal(t, 3, greece.Count)

	nowhere := rows[2]
	assert.Nil(t, nowhere.SPScore)
	assert.Nil(t, nowhere.Average)
	assert.Equal(t, 0, nowhere.Count)
}

func TestMerge(t *testing.T) {
	svc := newTestService(t)

	spreads := []models.SpreadRecord{
		{Country: "Germany", SpreadBP: -185.2},
		{Country: "UK", SpreadBP: 2500},         // Ukraine in this dataset
		{Country: "Ukraine (*)", SpreadBP: 2500}, // same country, decorated name
		{Country: "Atlantis", SpreadBP: 10},      // no ratings row
	}
	ratingRows := svc.AnnotateRatings([]models.CountryRatings{
		{Country: "Germany", SP: "AAA", Moodys: "Aaa", Fitch: "AAA"},
		{Country: "Ukraine", SP: "CCC+", Moodys: "Caa3", Fitch: "CCC-"},
	})

	merged := svc.Merge(spreads, ratingRows)
	require.Len(t, merged, 3)

	// Sorted by average rating, best first.
	assert.Equal(t, "Germany", merged[0].Country)
	for _, m := range merged[1:] {
		assert.Equal(t, "Ukraine", svc.countries.Canonical(m.Country))
	}
	// Atlantis had no ratings side and is dropped by the inner join.
	for _, m := range merged {
		assert.NotEqual(t, "Atlantis", m.Country)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	ratingRows := svc.AnnotateRatings([]models.CountryRatings{
		{Country: "Germany", SP: "AAA", Moodys: "Aaa", Fitch: "AAA"},
		{Country: "Hungary", SP: "BBB-    [downgrade]", Moodys: "Baa2", Fitch: ""},
	})
	spreads := []models.SpreadRecord{
		{Country: "Germany", SpreadBP: -185.2},
		{Country: "Hungary", SpreadBP: 210},
	}
	merged := svc.Merge(spreads, ratingRows)
	require.Len(t, merged, 2)

	spreadsPath := filepath.Join(dir, "government_bond_spreads.csv")
	ratingsPath := filepath.Join(dir, "world_credit_ratings_with_numeric.csv")
	mergedPath := filepath.Join(dir, "credit_ratings_and_spreads.csv")

	require.NoError(t, svc.WriteSpreadsCSV(spreadsPath, spreads))
	require.NoError(t, svc.WriteRatingsCSV(ratingsPath, ratingRows))
	require.NoError(t, svc.WriteMergedCSV(mergedPath, merged))

	back, err := svc.ReadMergedCSV(mergedPath)
	require.NoError(t, err)
	require.Len(t, back, 2)

	assert.Equal(t, "Germany", back[0].Country)
	assert.InDelta(t, -185.2, back[0].SpreadBP, 1e-9)
	require.NotNil(t, back[0].Ratings.Average)
	assert.InDelta(t, 22.0, *back[0].Ratings.Average, 1e-9)

	hungary := back[1]
	assert.Contains(t, hungary.Ratings.SP, "[downgrade]")
	require.NotNil(t, hungary.Ratings.SPScore)
	assert.InDelta(t, 13.0-1.0/3.0, *hungary.Ratings.SPScore, 1e-9)
	assert.Nil(t, hungary.Ratings.FitchScore)
	assert.Equal(t, 2, hungary.Ratings.Count)
}

// The grade summary reads the ratings CSV directly, so a country rated
// by the agencies but absent from the spreads page must survive the
// round trip.
func TestRatingsCSVRoundTrip_KeepsUnmergedCountries(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	ratingRows := svc.AnnotateRatings([]models.CountryRatings{
		{Country: "Germany", SP: "AAA", Moodys: "Aaa", Fitch: "AAA"},
		{Country: "Andorra", SP: "A-", Moodys: "", Fitch: ""}, // no spread row exists for this country
	})
	path := filepath.Join(dir, "world_credit_ratings_with_numeric.csv")
	require.NoError(t, svc.WriteRatingsCSV(path, ratingRows))

	back, err := svc.ReadRatingsCSV(path)
	require.NoError(t, err)
	require.Len(t, back, 2)

	andorra := back[1]
	assert.Equal(t, "Andorra", andorra.Country)
	require.NotNil(t, andorra.SPScore)
	assert.InDelta(t, 16.0, *andorra.SPScore, 1e-9)
	assert.Nil(t, andorra.MoodysScore)
	require.NotNil(t, andorra.Average)
	assert.InDelta(t, 16.0, *andorra.Average, 1e-9)
	assert.Equal(t, 1, andorra.Count)
}

func TestReadRatingsCSV_Missing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ReadRatingsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadMergedCSV_Missing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ReadMergedCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
