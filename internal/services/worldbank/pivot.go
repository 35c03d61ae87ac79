package worldbank

import (
	"sort"

	"github.com/ternarybob/sovereign/internal/models"
)

var codeToShort = func() map[string]string {
	m := make(map[string]string, len(models.WGIIndicators))
	for _, ind := range models.WGIIndicators {
		m[ind.Code] = ind.Short
	}
	return m
}()

type pivotKey struct {
	country string
	iso3    string
	year    int
}

// Pivot reshapes long observations into wide per-country-year records.
// The first value seen for a (country, year, indicator) cell wins.
// Output is sorted by country then year for stable downstream files.
func Pivot(observations []models.WGIObservation) []models.WGIRecord {
	byKey := make(map[pivotKey]*models.WGIRecord)
	var order []pivotKey

	for _, obs := range observations {
		short, ok := codeToShort[obs.Indicator]
		if !ok {
			continue
		}

		key := pivotKey{country: obs.Country, iso3: obs.ISO3, year: obs.Year}
		record, ok := byKey[key]
		if !ok {
			record = &models.WGIRecord{
				Country: obs.Country,
				ISO3:    obs.ISO3,
				Year:    obs.Year,
				Values:  make(map[string]*float64, len(models.WGIIndicators)),
			}
			byKey[key] = record
			order = append(order, key)
		}

		if record.Values[short] == nil {
			v := obs.Value
			record.Values[short] = &v
		}
	}

	sort.Slice(order, func(a, b int) bool {
		if order[a].country != order[b].country {
			return order[a].country < order[b].country
		}
		return order[a].year < order[b].year
	})

	out := make([]models.WGIRecord, len(order))
	for i, key := range order {
		out[i] = *byKey[key]
	}
	return out
}
