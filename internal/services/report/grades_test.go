package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/services/analysis"
)

func f(v float64) *float64 { return &v }

func testRatings() []models.CountryRatings {
	return []models.CountryRatings{
		{Country: "Germany", Average: f(22), Count: 3},
		{Country: "Switzerland", Average: f(22), Count: 3},
		{Country: "Italy", Average: f(14.33), Count: 3},
		{Country: "Greece", Average: f(13.44), Count: 3},
		{Country: "Ukraine", Average: f(4.67), Count: 3},
		{Country: "Nowhere", Count: 0},
	}
}

func TestGradesText(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	text := svc.GradesText(testRatings())

	// Bands appear best first, unrated countries last.
	prime := strings.Index(text, "Prime")
	lower := strings.Index(text, "Lower Medium Grade")
	substantial := strings.Index(text, "Substantial Risk")
	noRating := strings.Index(text, "No Rating")
	require.True(t, prime >= 0 && lower > prime && substantial > lower && noRating > substantial)

	// Within a band, countries sort by average then name.
	germany := strings.Index(text, "Germany")
	swiss := strings.Index(text, "Switzerland")
	assert.Less(t, germany, swiss)

	italy := strings.Index(text, "Italy")
	greece := strings.Index(text, "Greece")
	assert.Less(t, italy, greece)
}

func TestGradesCSV(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "ratings_by_grade.csv")

	require.NoError(t, svc.GradesCSV(testRatings(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Grade,Country,Average_Rating", lines[0])
	assert.Equal(t, "Prime,Germany,22.00", lines[1])
	assert.Equal(t, "No Rating,Nowhere,", lines[6])
}

func wgiPooledResult(t *testing.T) *analysis.Result {
	t.Helper()
	v1, v2 := 1.0, 2.0
	rec := func(country string, v *float64) models.WGIRecord {
		vals := make(map[string]*float64)
		for _, short := range []string{"VA", "PSV", "GE", "RQ", "RL", "CC"} {
			vals[short] = v
		}
		return models.WGIRecord{Country: country, Year: 2020, Values: vals}
	}
	result, err := analysis.Correlate(
		[]models.WGIRecord{rec("Ghana", &v1), rec("Kenya", &v2)}, analysis.MethodPooled)
	require.NoError(t, err)
	return result
}

func TestWGIMarkdown(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	md := svc.WGIMarkdown([]*analysis.Result{wgiPooledResult(t)}, 2010, 2023)

	assert.Contains(t, md, "# Worldwide Governance Indicators")
	assert.Contains(t, md, "Period: 2010-2023")
	assert.Contains(t, md, "Pooled Correlation (n=2)")
	assert.Contains(t, md, "| VA.EST | VA | Voice and Accountability |")
	assert.Contains(t, md, "## Summary Statistics (Pooled)")
	assert.Contains(t, md, "## Comparison with Published Values")
}

func TestConvertMarkdownToPDF(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	md := svc.WGIMarkdown([]*analysis.Result{wgiPooledResult(t)}, 2010, 2023)

	data, err := svc.ConvertMarkdownToPDF(md, "WGI Correlation Analysis")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestWritePDF(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "wgi_report.pdf")

	require.NoError(t, svc.WritePDF("# Title\n\nBody text.\n", "Title", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}
