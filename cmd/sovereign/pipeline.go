package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/services/analysis"
	"github.com/ternarybob/sovereign/internal/services/chart"
	"github.com/ternarybob/sovereign/internal/services/dataset"
	"github.com/ternarybob/sovereign/internal/services/report"
	"github.com/ternarybob/sovereign/internal/services/scheduler"
	"github.com/ternarybob/sovereign/internal/services/scraper"
	"github.com/ternarybob/sovereign/internal/services/worldbank"
)

// Output file names, kept stable for downstream consumers.
const (
	spreadsCSV = "government_bond_spreads.csv"
	ratingsCSV = "world_credit_ratings_with_numeric.csv"
	mergedCSV  = "credit_ratings_and_spreads.csv"
	gradesCSV  = "ratings_by_grade.csv"

	fullChartPDF = "bond_spreads_vs_ratings.pdf"
	igChartPDF   = "investment_grade_plot.pdf"
	wgiReportPDF = "wgi_correlation_report.pdf"
)

// pipeline wires the services behind the CLI commands.
type pipeline struct {
	config  *common.Config
	storage interfaces.StorageManager
	logger  arbor.ILogger

	scraper   *scraper.Service
	dataset   *dataset.Service
	worldbank *worldbank.Service
	chart     *chart.Service
	report    *report.Service
	scheduler *scheduler.Service
}

func newPipeline(config *common.Config, storageManager interfaces.StorageManager, logger arbor.ILogger) *pipeline {
	datasetSvc, err := dataset.NewService(config.Chart.CountryFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load country table")
	}

	return &pipeline{
		config:    config,
		storage:   storageManager,
		logger:    logger,
		scraper:   scraper.NewService(&config.Scraper, storageManager.PageStorage(), logger),
		dataset:   datasetSvc,
		worldbank: worldbank.NewService(&config.WorldBank, logger),
		chart:     chart.NewService(&config.Chart, datasetSvc, logger),
		report:    report.NewService(logger),
		scheduler: scheduler.NewService(logger),
	}
}

func (p *pipeline) Close() {
	if err := p.scraper.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("Scraper shutdown failed")
	}
}

func (p *pipeline) Dispatch(command string) error {
	ctx := context.Background()

	switch command {
	case "scrape":
		return p.runScrape(ctx)
	case "chart":
		return p.runChart(ctx)
	case "grades":
		return p.runGrades()
	case "wgi":
		return p.runWGI(ctx)
	case "run":
		return p.runAll(ctx)
	case "schedule":
		return p.runSchedule()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (p *pipeline) dataPath(name string) string {
	return filepath.Join(p.config.DataDir, name)
}

// runScrape pulls both pages, merges the tables and persists the
// results as CSV files and Badger snapshots.
func (p *pipeline) runScrape(ctx context.Context) error {
	spreads, err := p.scraper.ScrapeSpreads(ctx)
	if err != nil {
		return fmt.Errorf("spreads scrape failed: %w", err)
	}

	ratingRows, err := p.scraper.ScrapeRatings(ctx)
	if err != nil {
		return fmt.Errorf("ratings scrape failed: %w", err)
	}
	ratingRows = p.dataset.AnnotateRatings(ratingRows)

	merged := p.dataset.Merge(spreads, ratingRows)
	if len(merged) == 0 {
		return fmt.Errorf("merge produced no rows")
	}

	if err := os.MkdirAll(p.config.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := p.dataset.WriteSpreadsCSV(p.dataPath(spreadsCSV), spreads); err != nil {
		return err
	}
	if err := p.dataset.WriteRatingsCSV(p.dataPath(ratingsCSV), ratingRows); err != nil {
		return err
	}
	if err := p.dataset.WriteMergedCSV(p.dataPath(mergedCSV), merged); err != nil {
		return err
	}

	p.saveSnapshot(&models.DatasetSnapshot{
		Kind: models.SnapshotKindSpreads, RowCount: len(spreads), Spreads: spreads,
	})
	p.saveSnapshot(&models.DatasetSnapshot{
		Kind: models.SnapshotKindRatings, RowCount: len(ratingRows), Ratings: ratingRows,
	})
	p.saveSnapshot(&models.DatasetSnapshot{
		Kind: models.SnapshotKindMerged, RowCount: len(merged), Merged: merged,
	})

	p.logger.Info().
		Int("spreads", len(spreads)).
		Int("ratings", len(ratingRows)).
		Int("merged", len(merged)).
		Msg("Scrape complete")
	return nil
}

// saveSnapshot stores one snapshot and prunes old ones. Snapshot
// failures are logged, not fatal: the CSV outputs already exist.
func (p *pipeline) saveSnapshot(snap *models.DatasetSnapshot) {
	snap.ID = common.NewSnapshotID()
	store := p.storage.SnapshotStorage()
	if err := store.SaveSnapshot(snap); err != nil {
		p.logger.Warn().Err(err).Str("kind", snap.Kind).Msg("Snapshot save failed")
		return
	}
	if _, err := store.PruneSnapshots(snap.Kind, p.config.Storage.Badger.SnapshotsKept); err != nil {
		p.logger.Warn().Err(err).Str("kind", snap.Kind).Msg("Snapshot prune failed")
	}
}

// loadMerged prefers the CSV on disk and falls back to the latest
// Badger snapshot.
func (p *pipeline) loadMerged() ([]models.MergedRecord, error) {
	path := p.dataPath(mergedCSV)
	if merged, err := p.dataset.ReadMergedCSV(path); err == nil {
		return merged, nil
	}

	snap, err := p.storage.SnapshotStorage().LatestSnapshot(models.SnapshotKindMerged)
	if err != nil {
		return nil, fmt.Errorf("no merged dataset available, run scrape first: %w", err)
	}
	p.logger.Info().Str("snapshot", snap.ID).Msg("Using merged data from snapshot")
	return snap.Merged, nil
}

func (p *pipeline) runChart(ctx context.Context) error {
	merged, err := p.loadMerged()
	if err != nil {
		return err
	}

	var codes []string
	for i := range merged {
		codes = append(codes, p.dataset.ResolveCountryCode(merged[i].Country))
	}
	if err := p.chart.EnsureIcons(ctx, codes); err != nil {
		p.logger.Warn().Err(err).Msg("Flag icon refresh failed")
	}

	outDir := p.config.Chart.OutputDir
	if err := p.chart.RenderFull(merged, filepath.Join(outDir, fullChartPDF)); err != nil {
		return err
	}
	return p.chart.RenderInvestmentGrade(merged, filepath.Join(outDir, igChartPDF))
}

// loadRatings prefers the ratings CSV on disk and falls back to the
// latest Badger snapshot.
func (p *pipeline) loadRatings() ([]models.CountryRatings, error) {
	path := p.dataPath(ratingsCSV)
	if ratingRows, err := p.dataset.ReadRatingsCSV(path); err == nil {
		return ratingRows, nil
	}

	snap, err := p.storage.SnapshotStorage().LatestSnapshot(models.SnapshotKindRatings)
	if err != nil {
		return nil, fmt.Errorf("no ratings dataset available, run scrape first: %w", err)
	}
	p.logger.Info().Str("snapshot", snap.ID).Msg("Using ratings data from snapshot")
	return snap.Ratings, nil
}

// runGrades summarizes the full ratings table, including countries
// that have no spread row and so never reach the merged dataset.
func (p *pipeline) runGrades() error {
	ratingRows, err := p.loadRatings()
	if err != nil {
		return err
	}

	if err := p.report.GradesCSV(ratingRows, p.dataPath(gradesCSV)); err != nil {
		return err
	}
	fmt.Print(p.report.GradesText(ratingRows))
	return nil
}

func (p *pipeline) runWGI(ctx context.Context) error {
	startYear := p.config.WorldBank.StartYear
	endYear := p.config.WorldBank.EndYear

	records, err := p.worldbank.Download(ctx, startYear, endYear)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.config.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	rawPath := p.dataPath(fmt.Sprintf("wgi_raw_data_%d_%d.csv", startYear, endYear))
	if err := worldbank.WriteRecordsCSV(rawPath, records); err != nil {
		return err
	}

	var results []*analysis.Result
	var pooled *analysis.Result
	for _, method := range []analysis.Method{
		analysis.MethodPooled, analysis.MethodYearlyAverage, analysis.MethodLatestYear,
	} {
		result, err := analysis.Correlate(records, method)
		if err != nil {
			return fmt.Errorf("correlation (%s) failed: %w", method, err)
		}
		results = append(results, result)
		if method == analysis.MethodPooled {
			pooled = result
		}
		fmt.Println(analysis.FormatMatrix(result.Matrix, matrixTitle(result, startYear, endYear)))
	}

	fmt.Println(analysis.FormatComparison(analysis.CompareWithReference(pooled.Matrix)))

	matrixPath := p.dataPath(fmt.Sprintf("wgi_correlation_%d_%d.csv", startYear, endYear))
	if err := analysis.WriteMatrixCSV(matrixPath, pooled.Matrix); err != nil {
		return err
	}
	summaryPath := p.dataPath(fmt.Sprintf("wgi_correlation_summary_%d_%d.txt", startYear, endYear))
	if err := analysis.WriteSummary(summaryPath, pooled, startYear, endYear); err != nil {
		return err
	}

	markdown := p.report.WGIMarkdown(results, startYear, endYear)
	return p.report.WritePDF(markdown, "WGI Correlation Analysis", p.dataPath(wgiReportPDF))
}

func matrixTitle(r *analysis.Result, startYear, endYear int) string {
	switch r.Method {
	case analysis.MethodPooled:
		return fmt.Sprintf("POOLED CORRELATION (%d-%d, n=%d)", startYear, endYear, r.Observations)
	case analysis.MethodYearlyAverage:
		return fmt.Sprintf("AVERAGE YEARLY CORRELATION (%d-%d)", startYear, endYear)
	case analysis.MethodLatestYear:
		return fmt.Sprintf("LATEST YEAR ONLY (%d, n=%d)", r.Year, r.Observations)
	}
	return string(r.Method)
}

func (p *pipeline) runAll(ctx context.Context) error {
	if err := p.runScrape(ctx); err != nil {
		return err
	}
	if err := p.runChart(ctx); err != nil {
		return err
	}
	return p.runGrades()
}

// runSchedule runs the full pipeline on the configured cron schedule
// until interrupted.
func (p *pipeline) runSchedule() error {
	if !p.config.Schedule.Enabled {
		return fmt.Errorf("scheduling is disabled in configuration")
	}

	task := func(ctx context.Context) error {
		return p.runAll(ctx)
	}
	if err := p.scheduler.Start(p.config.Schedule.Cron, task); err != nil {
		return err
	}

	p.logger.Info().
		Str("cron", p.config.Schedule.Cron).
		Msg("Pipeline scheduled - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	p.logger.Info().Msg("Interrupt signal received")
	return p.scheduler.Stop()
}
