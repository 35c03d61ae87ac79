package worldbank

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ternarybob/sovereign/internal/models"
)

// WriteRecordsCSV saves the wide per-country-year table. Missing
// indicator cells are left empty.
func WriteRecordsCSV(path string, records []models.WGIRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	header := []string{"Country", "Country_Code", "Year"}
	for _, ind := range models.WGIIndicators {
		header = append(header, ind.Short)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Country, r.ISO3, strconv.Itoa(r.Year)}
		for _, ind := range models.WGIIndicators {
			if v := r.Values[ind.Short]; v != nil {
				row = append(row, strconv.FormatFloat(*v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
