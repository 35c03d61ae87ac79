package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ternarybob/sovereign/internal/models"
)

// Output file schemas match the historical dataset layout so existing
// downstream consumers keep working.
var (
	spreadsHeader = []string{"Country", "Spread"}
	ratingsHeader = []string{
		"Country", "S&P", "Moody's", "Fitch",
		"S&P_Numeric", "Moody's_Numeric", "Fitch_Numeric",
		"Average_Rating", "Ratings_Count",
	}
	mergedHeader = append([]string{"Country", "Spread"}, ratingsHeader[1:]...)
)

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatAverage(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSpreadsCSV writes government_bond_spreads.csv.
func (s *Service) WriteSpreadsCSV(path string, spreads []models.SpreadRecord) error {
	rows := make([][]string, len(spreads))
	for i, r := range spreads {
		rows[i] = []string{r.Country, strconv.FormatFloat(r.SpreadBP, 'f', -1, 64)}
	}
	return writeCSV(path, spreadsHeader, rows)
}

func ratingsColumns(r *models.CountryRatings) []string {
	return []string{
		r.SP, r.Moodys, r.Fitch,
		formatScore(r.SPScore), formatScore(r.MoodysScore), formatScore(r.FitchScore),
		formatAverage(r.Average), strconv.Itoa(r.Count),
	}
}

// WriteRatingsCSV writes world_credit_ratings_with_numeric.csv.
func (s *Service) WriteRatingsCSV(path string, ratingRows []models.CountryRatings) error {
	rows := make([][]string, len(ratingRows))
	for i, r := range ratingRows {
		rows[i] = append([]string{r.Country}, ratingsColumns(&r)...)
	}
	return writeCSV(path, ratingsHeader, rows)
}

// WriteMergedCSV writes credit_ratings_and_spreads.csv.
func (s *Service) WriteMergedCSV(path string, merged []models.MergedRecord) error {
	rows := make([][]string, len(merged))
	for i, m := range merged {
		rows[i] = append(
			[]string{m.Country, strconv.FormatFloat(m.SpreadBP, 'f', -1, 64)},
			ratingsColumns(&m.Ratings)...,
		)
	}
	return writeCSV(path, mergedHeader, rows)
}

// ReadRatingsCSV reads world_credit_ratings_with_numeric.csv back into
// memory. The grade summary runs off the full ratings table, so
// countries without a spread row are kept.
func (s *Service) ReadRatingsCSV(path string) ([]models.CountryRatings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if len(records[0]) != len(ratingsHeader) {
		return nil, fmt.Errorf("%s has %d columns, want %d", path, len(records[0]), len(ratingsHeader))
	}

	var out []models.CountryRatings
	for _, row := range records[1:] {
		rating := models.CountryRatings{
			Country:     row[0],
			SP:          row[1],
			Moodys:      row[2],
			Fitch:       row[3],
			SPScore:     parseOptionalFloat(row[4]),
			MoodysScore: parseOptionalFloat(row[5]),
			FitchScore:  parseOptionalFloat(row[6]),
			Average:     parseOptionalFloat(row[7]),
		}
		if n, err := strconv.Atoi(row[8]); err == nil {
			rating.Count = n
		}
		out = append(out, rating)
	}
	return out, nil
}

// ReadMergedCSV reads credit_ratings_and_spreads.csv back into memory
// so charts and reports can run without re-scraping.
func (s *Service) ReadMergedCSV(path string) ([]models.MergedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if len(records[0]) != len(mergedHeader) {
		return nil, fmt.Errorf("%s has %d columns, want %d", path, len(records[0]), len(mergedHeader))
	}

	var out []models.MergedRecord
	for i, row := range records[1:] {
		spread, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad spread %q: %w", path, i+2, row[1], err)
		}

		ratings := models.CountryRatings{
			Country:     row[0],
			SP:          row[2],
			Moodys:      row[3],
			Fitch:       row[4],
			SPScore:     parseOptionalFloat(row[5]),
			MoodysScore: parseOptionalFloat(row[6]),
			FitchScore:  parseOptionalFloat(row[7]),
			Average:     parseOptionalFloat(row[8]),
		}
		if n, err := strconv.Atoi(row[9]); err == nil {
			ratings.Count = n
		}

		out = append(out, models.MergedRecord{
			Country:  row[0],
			SpreadBP: spread,
			Ratings:  ratings,
		})
	}
	return out, nil
}
