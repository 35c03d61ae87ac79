// -----------------------------------------------------------------------
// Chart Service - bond spreads vs credit ratings scatter plots
// -----------------------------------------------------------------------

package chart

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/layout"
	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/ratings"
	"github.com/ternarybob/sovereign/internal/services/analysis"
)

const (
	chartTitle = "Bond Spreads vs. Sovereign Credit Ratings"
	xAxisLabel = "10-Year Bond Spread to US (bp)"
	yAxisLabel = "Credit Rating"

	pointRadius = 1.6 // mm
	flagWidth   = 4.8 // mm, 4x3 aspect
	flagHeight  = 3.6

	jitterSigma = 5.0 // bp, matches the historical plots
	jitterSeed  = 42
)

type rgb struct{ r, g, b int }

// Agency series colors, brightest-palette order.
var seriesColors = []rgb{
	{2, 62, 255},   // S&P
	{255, 124, 0},  // Moody's
	{26, 201, 56},  // Fitch
}

type series struct {
	label string
	color rgb
	score func(*models.CountryRatings) *float64
}

func agencySeries() []series {
	return []series{
		{"S&P", seriesColors[0], func(r *models.CountryRatings) *float64 { return r.SPScore }},
		{"Moody's", seriesColors[1], func(r *models.CountryRatings) *float64 { return r.MoodysScore }},
		{"Fitch", seriesColors[2], func(r *models.CountryRatings) *float64 { return r.FitchScore }},
	}
}

// Service renders the scatter charts as PDF pages.
type Service struct {
	config  *common.ChartConfig
	dataset interfaces.DatasetService
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ChartService = (*Service)(nil)

// NewService creates a new chart service
func NewService(config *common.ChartConfig, dataset interfaces.DatasetService, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		dataset: dataset,
		logger:  logger,
	}
}

// plotSpec is everything that differs between the two chart variants.
type plotSpec struct {
	minX, maxX   float64 // zero-zero means derive from the data
	minY, maxY   float64
	tickFrom     int
	tickTo       int
	layoutCfg    layout.Config
	speculative  bool // shade the speculative band too
	bandFloor    float64
}

// RenderFull renders the all-countries chart.
func (s *Service) RenderFull(merged []models.MergedRecord, outputPath string) error {
	spec := plotSpec{
		minY: 0, maxY: 23.5,
		tickFrom: ratings.MinScore, tickTo: ratings.MaxScore,
		layoutCfg: layout.Config{
			OffsetX:          s.config.LabelOffsetX,
			MinVerticalGap:   0.8,
			HorizontalWindow: 50,
			MinY:             0,
			MaxY:             23.5,
		},
		speculative: true,
		bandFloor:   float64(ratings.InvestmentGradeMin),
	}
	return s.render(merged, spec, outputPath)
}

// RenderInvestmentGrade renders only countries rated BBB or better by
// at least one agency, on fixed axes.
func (s *Service) RenderInvestmentGrade(merged []models.MergedRecord, outputPath string) error {
	floor := float64(ratings.InvestmentGradeMin + 1)
	var filtered []models.MergedRecord
	for _, m := range merged {
		if max, ok := m.Ratings.MaxScore(); ok && max >= floor {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("no investment-grade countries to plot")
	}

	spec := plotSpec{
		minX: -500, maxX: 500,
		minY: 13.8, maxY: 22.5,
		tickFrom: ratings.InvestmentGradeMin + 1, tickTo: ratings.MaxScore,
		layoutCfg: layout.Config{
			OffsetX:          s.config.LabelOffsetX,
			MinVerticalGap:   0.6,
			HorizontalWindow: 40,
			MinY:             13.8,
			MaxY:             22.5,
			Strict:           true,
		},
		bandFloor: float64(ratings.InvestmentGradeMin + 1),
	}
	return s.render(filtered, spec, outputPath)
}

func (s *Service) render(merged []models.MergedRecord, spec plotSpec, outputPath string) error {
	if len(merged) == 0 {
		return fmt.Errorf("no records to plot")
	}

	// Pooled observations drive the axis range, trend and correlation.
	var allX, allY []float64
	for i := range merged {
		for _, score := range merged[i].Ratings.Scores() {
			allX = append(allX, merged[i].SpreadBP)
			allY = append(allY, score)
		}
	}
	if len(allX) < 2 {
		return fmt.Errorf("not enough rated observations to plot")
	}

	minX, maxX := spec.minX, spec.maxX
	if minX == 0 && maxX == 0 {
		minX, maxX = allX[0], allX[0]
		for _, x := range allX {
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
		}
		pad := (maxX - minX) * 0.05
		minX -= pad
		maxX += pad
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	a := axes{
		x0: 35, y0: 28, w: 235, h: 160,
		minX: minX, maxX: maxX, minY: spec.minY, maxY: spec.maxY,
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, chartTitle, "", 1, "C", false, 0, "")

	s.drawBands(pdf, a, spec)
	s.drawGrid(pdf, a, spec)
	s.drawTieLines(pdf, a, merged)
	s.drawTrend(pdf, a, allX, allY)
	s.drawPoints(pdf, a, merged)
	s.drawCorrelation(pdf, a, allX, allY)
	s.drawLegend(pdf, a)
	s.drawLabels(pdf, a, merged, spec.layoutCfg)
	s.drawFrame(pdf, a, spec)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", outputPath, err)
	}

	s.logger.Info().
		Str("output", outputPath).
		Int("countries", len(merged)).
		Msg("Chart rendered")
	return nil
}

func (s *Service) drawBands(pdf *fpdf.Fpdf, a axes, spec plotSpec) {
	pdf.SetAlpha(0.25, "Normal")

	top := math.Min(float64(ratings.MaxScore), a.maxY)
	pdf.SetFillColor(204, 230, 255)
	pdf.Rect(a.x0, a.py(top), a.w, a.py(spec.bandFloor)-a.py(top), "F")

	if spec.speculative {
		pdf.SetFillColor(232, 213, 255)
		pdf.Rect(a.x0, a.py(spec.bandFloor), a.w, a.py(math.Max(1, a.minY))-a.py(spec.bandFloor), "F")
	}
	pdf.SetAlpha(1, "Normal")

	if spec.speculative {
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(0, 0, 128)
		boundary := float64(ratings.InvestmentGradeMin)
		pdf.Text(a.x0+a.w-34, a.py(boundary+0.2), "Investment Grade")
		pdf.SetTextColor(94, 59, 127)
		pdf.Text(a.x0+a.w-34, a.py(boundary-0.8), "Speculative Grade")
		pdf.SetTextColor(0, 0, 0)
	}
}

func (s *Service) drawGrid(pdf *fpdf.Fpdf, a axes, spec plotSpec) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(60, 60, 60)

	for t := spec.tickFrom; t <= spec.tickTo; t++ {
		y := a.py(float64(t))
		pdf.Line(a.x0, y, a.x0+a.w, y)
		label := ratings.ScoreLabel(t)
		pdf.Text(a.x0-pdf.GetStringWidth(label)-2, y+1.2, label)
	}

	for _, t := range xTicks(a.minX, a.maxX) {
		x := a.px(t)
		pdf.Line(x, a.y0, x, a.y0+a.h)
		label := fmt.Sprintf("%.0f", t)
		pdf.Text(x-pdf.GetStringWidth(label)/2, a.y0+a.h+5, label)
	}
	pdf.SetTextColor(0, 0, 0)
}

func (s *Service) drawFrame(pdf *fpdf.Fpdf, a axes, spec plotSpec) {
	// Zero-spread reference line.
	if a.minX < 0 && a.maxX > 0 {
		pdf.SetAlpha(0.4, "Normal")
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Line(a.px(0), a.y0, a.px(0), a.y0+a.h)
		pdf.SetAlpha(1, "Normal")
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Rect(a.x0, a.y0, a.w, a.h, "D")

	pdf.SetFont("Arial", "", 11)
	pdf.Text(a.x0+a.w/2-pdf.GetStringWidth(xAxisLabel)/2, a.y0+a.h+12, xAxisLabel)

	pdf.TransformBegin()
	pdf.TransformRotate(90, a.x0-22, a.y0+a.h/2)
	pdf.Text(a.x0-22-pdf.GetStringWidth(yAxisLabel)/2, a.y0+a.h/2, yAxisLabel)
	pdf.TransformEnd()
}

func (s *Service) drawTieLines(pdf *fpdf.Fpdf, a axes, merged []models.MergedRecord) {
	pdf.SetAlpha(0.55, "Normal")
	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.6)
	for i := range merged {
		scores := merged[i].Ratings.Scores()
		if len(scores) < 2 {
			continue
		}
		lo, hi := scores[0], scores[0]
		for _, v := range scores[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			continue
		}
		x := a.px(merged[i].SpreadBP)
		pdf.Line(x, a.py(lo), x, a.py(hi))
	}
	pdf.SetAlpha(1, "Normal")
}

func (s *Service) drawTrend(pdf *fpdf.Fpdf, a axes, xs, ys []float64) {
	m, b := leastSquares(xs, ys)

	clampY := func(y float64) float64 {
		return math.Max(a.minY, math.Min(a.maxY, y))
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.SetDashPattern([]float64{2, 1.5}, 0)
	// Draw in short segments so the clamp keeps the line inside the
	// plot instead of distorting its slope.
	const segments = 100
	for i := 0; i < segments; i++ {
		x1 := a.minX + (a.maxX-a.minX)*float64(i)/segments
		x2 := a.minX + (a.maxX-a.minX)*float64(i+1)/segments
		y1, y2 := m*x1+b, m*x2+b
		if y1 < a.minY && y2 < a.minY || y1 > a.maxY && y2 > a.maxY {
			continue
		}
		pdf.Line(a.px(x1), a.py(clampY(y1)), a.px(x2), a.py(clampY(y2)))
	}
	pdf.SetDashPattern([]float64{}, 0)
}

func (s *Service) drawPoints(pdf *fpdf.Fpdf, a axes, merged []models.MergedRecord) {
	rng := rand.New(rand.NewSource(jitterSeed))
	pdf.SetAlpha(0.85, "Normal")
	for _, ser := range agencySeries() {
		pdf.SetFillColor(ser.color.r, ser.color.g, ser.color.b)
		for i := range merged {
			score := ser.score(&merged[i].Ratings)
			if score == nil {
				continue
			}
			x := merged[i].SpreadBP + rng.NormFloat64()*jitterSigma
			pdf.Circle(a.px(x), a.py(*score), pointRadius, "F")
		}
	}
	pdf.SetAlpha(1, "Normal")
}

func (s *Service) drawCorrelation(pdf *fpdf.Fpdf, a axes, xs, ys []float64) {
	r := analysis.Pearson(xs, ys)
	label := fmt.Sprintf("r = %.2f", r)

	pdf.SetFont("Arial", "", 11)
	w := pdf.GetStringWidth(label) + 4
	x := a.x0 + a.w - w - 3
	y := a.y0 + a.h - 9

	pdf.SetAlpha(0.7, "Normal")
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(x, y, w, 6, "F")
	pdf.SetAlpha(1, "Normal")
	pdf.Text(x+2, y+4.5, label)
}

func (s *Service) drawLegend(pdf *fpdf.Fpdf, a axes) {
	pdf.SetFont("Arial", "", 9)
	x := a.x0 + a.w - 28
	y := a.y0 + 4
	for _, ser := range agencySeries() {
		pdf.SetFillColor(ser.color.r, ser.color.g, ser.color.b)
		pdf.Circle(x, y, 1.4, "F")
		pdf.Text(x+3.5, y+1.2, ser.label)
		y += 5
	}
}

// drawLabels places one flag (or fallback code) per country next to its
// best rating, using the collision resolver for positions.
func (s *Service) drawLabels(pdf *fpdf.Fpdf, a axes, merged []models.MergedRecord, cfg layout.Config) {
	var points []layout.Point
	var codes []string
	for i := range merged {
		max, ok := merged[i].Ratings.MaxScore()
		if !ok {
			continue
		}
		points = append(points, layout.Point{
			X:  merged[i].SpreadBP,
			Y:  max,
			ID: merged[i].Country,
		})
		codes = append(codes, s.dataset.ResolveCountryCode(merged[i].Country))
	}

	placed := layout.Resolve(points, cfg)

	pdf.SetFont("Arial", "B", 8)
	for i, pos := range placed {
		x, y := a.px(pos.X), a.py(pos.Y)
		iconPath := s.iconPath(codes[i])
		if iconPath != "" {
			pdf.ImageOptions(iconPath, x, y-flagHeight/2, flagWidth, flagHeight,
				false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		} else {
			pdf.Text(x, y+1.2, strings.ToUpper(codes[i]))
		}
	}
}

func (s *Service) iconPath(code string) string {
	if s.config.IconDir == "" {
		return ""
	}
	path := filepath.Join(s.config.IconDir, code+".png")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
