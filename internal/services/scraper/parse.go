package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/sovereign/internal/models"
)

// Outlook indicator selectors on the ratings page. A tiny red dot next
// to a rating means negative watch, teal means positive.
const (
	downgradeIconSelector = "i.w3-text-red.fa.fa-circle.w3-tiny"
	upgradeIconSelector   = "i.w3-text-teal.fa.fa-circle.w3-tiny"
)

// Outlook tags appended to cell text, padded the way the source data
// pads them so downstream normalization sees one wire format.
const (
	downgradeTag = "    [downgrade]"
	upgradeTag   = "    [upgrade]"
)

// Spreads table column positions: country sits in column 1, the spread
// vs USA in column 4. The first two rows are headers.
const (
	spreadCountryColumn = 1
	spreadUSAColumn     = 4
	spreadHeaderRows    = 2
)

// largestTable returns the table with the most rows. Both pages carry
// navigation tables around the data table; the data table dominates by
// row count.
func largestTable(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestRows := -1
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		rows := table.Find("tr").Length()
		if rows > bestRows {
			bestRows = rows
			best = table
		}
	})
	return best
}

// parseSpreadValue cleans a raw spread cell ("1,234.5 bp", "12%") into
// basis points.
func parseSpreadValue(raw string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", "%", "", "bp", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseSpreadsHTML extracts spread records from the rendered spreads
// page. Rows with a missing country or non-numeric spread are dropped,
// not errors.
func ParseSpreadsHTML(html string) ([]models.SpreadRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreads page: %w", err)
	}

	table := largestTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no tables found on spreads page")
	}

	var records []models.SpreadRecord
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < spreadHeaderRows {
			return
		}
		cells := row.Find("td")
		if cells.Length() <= spreadUSAColumn {
			return
		}

		country := strings.TrimSpace(cells.Eq(spreadCountryColumn).Text())
		if country == "" {
			return
		}
		spread, ok := parseSpreadValue(cells.Eq(spreadUSAColumn).Text())
		if !ok {
			return
		}

		records = append(records, models.SpreadRecord{
			Country:  country,
			SpreadBP: spread,
		})
	})

	return records, nil
}

// ratingColumns holds the resolved column indices of the ratings table.
type ratingColumns struct {
	country int
	sp      int
	moodys  int
	fitch   int
	dbrs    int // present on the page but deliberately skipped
}

func findRatingColumns(headers []string) ratingColumns {
	cols := ratingColumns{country: -1, sp: -1, moodys: -1, fitch: -1, dbrs: -1}
	for i, h := range headers {
		lower := strings.ToLower(h)
		switch {
		case strings.Contains(lower, "country"):
			cols.country = i
		case strings.Contains(lower, "s&p"):
			cols.sp = i
		case strings.Contains(lower, "moody"):
			cols.moodys = i
		case strings.Contains(lower, "fitch"):
			cols.fitch = i
		case strings.Contains(lower, "dbrs"):
			cols.dbrs = i
		}
	}
	return cols
}

// ratingCellText reads a rating cell and folds its outlook icon, when
// present, into the text as a bracketed tag.
func ratingCellText(cell *goquery.Selection) string {
	text := strings.TrimSpace(cell.Text())
	if cell.Find(downgradeIconSelector).Length() > 0 {
		return text + downgradeTag
	}
	if cell.Find(upgradeIconSelector).Length() > 0 {
		return text + upgradeTag
	}
	return text
}

// ParseRatingsHTML extracts per-country raw agency ratings from the
// rendered credit-ratings page. DBRS is skipped. The returned rows are
// raw text only; numeric conversion happens downstream.
func ParseRatingsHTML(html string) ([]models.CountryRatings, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ratings page: %w", err)
	}

	table := largestTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no tables found on ratings page")
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("ratings table has no data rows")
	}

	var headers []string
	rows.Eq(0).Find("th").Each(func(i int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	cols := findRatingColumns(headers)
	if cols.country < 0 {
		return nil, fmt.Errorf("ratings table has no country column")
	}

	var out []models.CountryRatings
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		country := strings.TrimSpace(cells.Eq(cols.country).Text())
		if country == "" {
			return
		}

		record := models.CountryRatings{Country: country}
		if cols.sp >= 0 && cols.sp < cells.Length() {
			record.SP = ratingCellText(cells.Eq(cols.sp))
		}
		if cols.moodys >= 0 && cols.moodys < cells.Length() {
			record.Moodys = ratingCellText(cells.Eq(cols.moodys))
		}
		if cols.fitch >= 0 && cols.fitch < cells.Length() {
			record.Fitch = ratingCellText(cells.Eq(cols.fitch))
		}
		out = append(out, record)
	})

	return out, nil
}
