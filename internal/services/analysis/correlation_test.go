package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovereign/internal/models"
)

func wgiRecord(country string, year int, va, psv, ge, rq, rl, cc float64) models.WGIRecord {
	vals := map[string]*float64{
		"VA": &va, "PSV": &psv, "GE": &ge, "RQ": &rq, "RL": &rl, "CC": &cc,
	}
	return models.WGIRecord{Country: country, ISO3: strings.ToUpper(country[:3]), Year: year, Values: vals}
}

// uniform builds a record where every indicator shares one value, so
// any pair correlates perfectly across a set of such records.
func uniform(country string, year int, v float64) models.WGIRecord {
	return wgiRecord(country, year, v, v, v, v, v, v)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.InDelta(t, 0.5, Pearson([]float64{1, 2, 3}, []float64{1, 3, 2}), 1e-12)
}

func TestCorrelate_Pooled(t *testing.T) {
	records := []models.WGIRecord{
		uniform("Austria", 2020, 1),
		uniform("Belgium", 2020, 2),
		uniform("Croatia", 2020, 3),
	}

	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Observations)

	for i := range result.Matrix.Indicators {
		for j := range result.Matrix.Indicators {
			assert.InDelta(t, 1.0, result.Matrix.At(i, j), 1e-12)
		}
	}
}

func TestCorrelate_SkipsIncompleteRows(t *testing.T) {
	partial := uniform("Denmark", 2020, 1)
	partial.Values["RL"] = nil

	records := []models.WGIRecord{
		partial,
		uniform("Estonia", 2020, 1),
		uniform("Finland", 2020, 2),
	}

	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Observations)
}

func TestCorrelate_YearlyAverageSkipsSmallYears(t *testing.T) {
	var records []models.WGIRecord
	// Eleven perfectly correlated rows in 2020, enough for inclusion.
	for i := 0; i < 11; i++ {
		records = append(records, uniform("Country"+string(rune('A'+i)), 2020, float64(i)))
	}
	// Two anti-correlated rows in 2021, below the yearly minimum.
	records = append(records,
		wgiRecord("Ghana", 2021, 1, 3, 1, 1, 1, 1),
		wgiRecord("Haiti", 2021, 3, 1, 3, 3, 3, 3),
	)

	yearly, err := Correlate(records, MethodYearlyAverage)
	require.NoError(t, err)
	vaPSV, ok := yearly.Matrix.Value("VA", "PSV")
	require.True(t, ok)
	assert.InDelta(t, 1.0, vaPSV, 1e-12)

	pooled, err := Correlate(records, MethodPooled)
	require.NoError(t, err)
	pooledVaPSV, _ := pooled.Matrix.Value("VA", "PSV")
	assert.Less(t, pooledVaPSV, 1.0)
}

func TestCorrelate_LatestYear(t *testing.T) {
	records := []models.WGIRecord{
		uniform("India", 2019, 1),
		uniform("Japan", 2019, 2),
		wgiRecord("Kenya", 2021, 1, 3, 1, 1, 1, 1),
		wgiRecord("Libya", 2021, 3, 1, 3, 3, 3, 3),
	}

	result, err := Correlate(records, MethodLatestYear)
	require.NoError(t, err)
	assert.Equal(t, 2021, result.Year)
	assert.Equal(t, 2, result.Observations)

	vaPSV, ok := result.Matrix.Value("VA", "PSV")
	require.True(t, ok)
	assert.InDelta(t, -1.0, vaPSV, 1e-12)
}

func TestCorrelate_Errors(t *testing.T) {
	_, err := Correlate([]models.WGIRecord{uniform("Malta", 2020, 1)}, MethodPooled)
	assert.Error(t, err)

	records := []models.WGIRecord{
		uniform("Nepal", 2020, 1),
		uniform("Oman", 2020, 2),
	}
	_, err = Correlate(records, Method("bogus"))
	assert.Error(t, err)
}

func TestUpperTriangleStats(t *testing.T) {
	records := []models.WGIRecord{
		uniform("Peru", 2020, 1),
		uniform("Qatar", 2020, 2),
		uniform("Spain", 2020, 3),
	}
	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)

	stats := UpperTriangleStats(result.Matrix)
	assert.InDelta(t, 1.0, stats.Mean, 1e-12)
	assert.InDelta(t, 1.0, stats.Median, 1e-12)
	assert.InDelta(t, 1.0, stats.Min, 1e-12)
	assert.InDelta(t, 1.0, stats.Max, 1e-12)
	assert.InDelta(t, 0.0, stats.StdDev, 1e-12)
}

func TestCompareWithReference(t *testing.T) {
	records := []models.WGIRecord{
		uniform("Togo", 2020, 1),
		uniform("Yemen", 2020, 2),
	}
	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)

	comparisons := CompareWithReference(result.Matrix)
	require.Len(t, comparisons, 15)

	first := comparisons[0]
	assert.Equal(t, "VA", first.A)
	assert.Equal(t, "PSV", first.B)
	assert.InDelta(t, 0.51, first.Reference, 1e-12)
	assert.InDelta(t, 1.0, first.Calculated, 1e-12)
	assert.InDelta(t, 0.49, first.Difference, 1e-12)
	assert.True(t, first.Large())
}

func TestWriteMatrixCSV(t *testing.T) {
	records := []models.WGIRecord{
		uniform("Chad", 2020, 1),
		uniform("Cuba", 2020, 2),
	}
	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wgi_correlation.csv")
	require.NoError(t, WriteMatrixCSV(path, result.Matrix))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, ",VA,PSV,GE,RQ,RL,CC", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "VA,1,"))
}

func TestFormatMatrix_LowerTriangular(t *testing.T) {
	records := []models.WGIRecord{
		uniform("Fiji", 2020, 1),
		uniform("Laos", 2020, 2),
	}
	result, err := Correlate(records, MethodPooled)
	require.NoError(t, err)

	text := FormatMatrix(result.Matrix, "POOLED CORRELATION")
	assert.Contains(t, text, "POOLED CORRELATION")
	assert.Contains(t, text, "1.00")
	assert.Contains(t, text, "CC")
}
