package dataset

import (
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/ratings"
)

// Service implements interfaces.DatasetService
type Service struct {
	logger    arbor.ILogger
	countries *CountryTable
}

// Compile-time assertion
var _ interfaces.DatasetService = (*Service)(nil)

// NewService creates a dataset service. countryFile is an optional YAML
// override for the built-in country table.
func NewService(countryFile string, logger arbor.ILogger) (*Service, error) {
	countries, err := LoadCountryTable(countryFile)
	if err != nil {
		return nil, err
	}
	return &Service{
		logger:    logger,
		countries: countries,
	}, nil
}

// AnnotateRatings fills the numeric scores, average and count on raw
// rating rows. Rows with no parseable rating keep nil scores and a nil
// average; they are kept, not dropped.
func (s *Service) AnnotateRatings(rows []models.CountryRatings) []models.CountryRatings {
	normalize := func(agency ratings.Agency, raw string) *float64 {
		scale, ok := ratings.ScaleFor(agency)
		if !ok {
			return nil
		}
		if v, ok := scale.Normalize(raw); ok {
			return &v
		}
		return nil
	}

	out := make([]models.CountryRatings, len(rows))
	for i, row := range rows {
		row.SPScore = normalize(ratings.AgencySP, row.SP)
		row.MoodysScore = normalize(ratings.AgencyMoodys, row.Moodys)
		row.FitchScore = normalize(ratings.AgencyFitch, row.Fitch)

		scores := row.Scores()
		row.Count = len(scores)
		if avg, ok := ratings.Average(scores); ok {
			row.Average = &avg
		}
		out[i] = row
	}
	return out
}

// Merge inner-joins spreads and ratings on the cleaned, alias-resolved
// country name. Countries present on only one side are dropped. The
// result is sorted by average rating, best first; unrated countries
// come last in name order.
func (s *Service) Merge(spreads []models.SpreadRecord, ratingRows []models.CountryRatings) []models.MergedRecord {
	byCountry := make(map[string]models.CountryRatings, len(ratingRows))
	for _, row := range ratingRows {
		byCountry[s.countries.Canonical(row.Country)] = row
	}

	var merged []models.MergedRecord
	for _, spread := range spreads {
		canonical := s.countries.Canonical(spread.Country)
		row, ok := byCountry[canonical]
		if !ok {
			continue
		}
		merged = append(merged, models.MergedRecord{
			Country:  spread.Country,
			SpreadBP: spread.SpreadBP,
			Ratings:  row,
		})
	}

	sort.SliceStable(merged, func(a, b int) bool {
		ra, rb := merged[a].Ratings.Average, merged[b].Ratings.Average
		switch {
		case ra != nil && rb != nil:
			return *ra > *rb
		case ra != nil:
			return true
		case rb != nil:
			return false
		default:
			return merged[a].Country < merged[b].Country
		}
	})

	s.logger.Info().
		Int("spreads", len(spreads)).
		Int("ratings", len(ratingRows)).
		Int("merged", len(merged)).
		Msg("Merged spread and rating datasets")

	return merged
}

// ResolveCountryCode maps a country name to its two-letter icon code.
func (s *Service) ResolveCountryCode(name string) string {
	return s.countries.Code(name)
}
