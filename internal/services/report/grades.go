// -----------------------------------------------------------------------
// Report Service - grade summary table and PDF reports
// -----------------------------------------------------------------------

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/ratings"
)

// Service implements interfaces.ReportService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

type gradeEntry struct {
	country string
	average *float64
}

// groupByGrade buckets countries into the rating bands, best band
// first and No Rating last. Within a band countries sort by average
// descending, ties by name.
func groupByGrade(rows []models.CountryRatings) ([]string, map[string][]gradeEntry) {
	buckets := make(map[string][]gradeEntry)
	for i := range rows {
		var avg float64
		present := rows[i].Average != nil
		if present {
			avg = *rows[i].Average
		}
		name := ratings.GradeFor(avg, present)
		buckets[name] = append(buckets[name], gradeEntry{rows[i].Country, rows[i].Average})
	}

	var order []string
	for _, g := range ratings.Grades {
		if len(buckets[g.Name]) > 0 {
			order = append(order, g.Name)
		}
	}
	if len(buckets[ratings.NoRating]) > 0 {
		order = append(order, ratings.NoRating)
	}

	for _, name := range order {
		entries := buckets[name]
		sort.SliceStable(entries, func(a, b int) bool {
			ea, eb := entries[a], entries[b]
			if ea.average == nil || eb.average == nil {
				return ea.country < eb.country
			}
			if *ea.average != *eb.average {
				return *ea.average > *eb.average
			}
			return ea.country < eb.country
		})
	}
	return order, buckets
}

// GradesCSV writes ratings_by_grade.csv.
func (s *Service) GradesCSV(rows []models.CountryRatings, path string) error {
	order, buckets := groupByGrade(rows)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Grade", "Country", "Average_Rating"}); err != nil {
		return err
	}
	for _, grade := range order {
		for _, e := range buckets[grade] {
			avg := ""
			if e.average != nil {
				avg = fmt.Sprintf("%.2f", *e.average)
			}
			if err := w.Write([]string{grade, e.country, avg}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	s.logger.Info().Str("path", path).Int("countries", len(rows)).Msg("Grade summary written")
	return nil
}

// GradesText renders the grade summary as a console table.
func (s *Service) GradesText(rows []models.CountryRatings) string {
	order, buckets := groupByGrade(rows)

	var b strings.Builder
	b.WriteString("Sovereign Ratings by Grade\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")

	for _, grade := range order {
		fmt.Fprintf(&b, "\n%s\n%s\n", grade, strings.Repeat("-", len(grade)))
		for _, e := range buckets[grade] {
			if e.average != nil {
				fmt.Fprintf(&b, "  %-28s %6.2f\n", e.country, *e.average)
			} else {
				fmt.Fprintf(&b, "  %-28s %6s\n", e.country, "-")
			}
		}
	}
	return b.String()
}
