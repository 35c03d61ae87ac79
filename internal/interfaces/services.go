package interfaces

import (
	"context"

	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/services/analysis"
)

// ScraperService fetches and parses the two worldgovernmentbonds pages.
type ScraperService interface {
	ScrapeSpreads(ctx context.Context) ([]models.SpreadRecord, error)
	ScrapeRatings(ctx context.Context) ([]models.CountryRatings, error)
	Close() error
}

// DatasetService merges, cleans and persists tabular data.
type DatasetService interface {
	AnnotateRatings(rows []models.CountryRatings) []models.CountryRatings
	Merge(spreads []models.SpreadRecord, ratings []models.CountryRatings) []models.MergedRecord
	WriteSpreadsCSV(path string, spreads []models.SpreadRecord) error
	WriteRatingsCSV(path string, ratings []models.CountryRatings) error
	WriteMergedCSV(path string, merged []models.MergedRecord) error
	ReadRatingsCSV(path string) ([]models.CountryRatings, error)
	ReadMergedCSV(path string) ([]models.MergedRecord, error)
	ResolveCountryCode(name string) string
}

// WGIService downloads World Bank governance indicators.
type WGIService interface {
	Download(ctx context.Context, startYear, endYear int) ([]models.WGIRecord, error)
}

// ChartService renders the scatter charts.
type ChartService interface {
	RenderFull(merged []models.MergedRecord, outputPath string) error
	RenderInvestmentGrade(merged []models.MergedRecord, outputPath string) error
}

// ReportService renders summary tables and reports.
type ReportService interface {
	GradesCSV(ratings []models.CountryRatings, path string) error
	GradesText(ratings []models.CountryRatings) string
	WGIMarkdown(results []*analysis.Result, startYear, endYear int) string
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
	WritePDF(markdown, title, path string) error
}
