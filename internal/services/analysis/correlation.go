// -----------------------------------------------------------------------
// WGI Correlation Analysis - pairwise Pearson correlation of the six
// governance indicators across countries and years
// -----------------------------------------------------------------------

package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/sovereign/internal/models"
)

// Method selects how observations are combined before correlating.
type Method string

const (
	// MethodPooled correlates all complete country-year rows together.
	MethodPooled Method = "pooled"
	// MethodYearlyAverage correlates each year separately and averages
	// the matrices. Years with ten or fewer complete rows are skipped.
	MethodYearlyAverage Method = "yearly_avg"
	// MethodLatestYear correlates only the most recent year present.
	MethodLatestYear Method = "latest"
)

const yearlyMinimumRows = 10

// Matrix is a symmetric correlation matrix over the indicator shorts.
type Matrix struct {
	Indicators []string
	cells      [][]float64
}

func newMatrix(indicators []string) *Matrix {
	cells := make([][]float64, len(indicators))
	for i := range cells {
		cells[i] = make([]float64, len(indicators))
		cells[i][i] = 1
	}
	return &Matrix{Indicators: indicators, cells: cells}
}

// At returns the correlation at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.cells[i][j]
}

// Value looks up the correlation between two indicators by short name.
func (m *Matrix) Value(a, b string) (float64, bool) {
	ai, bi := m.index(a), m.index(b)
	if ai < 0 || bi < 0 {
		return 0, false
	}
	return m.cells[ai][bi], true
}

func (m *Matrix) index(name string) int {
	for i, ind := range m.Indicators {
		if ind == name {
			return i
		}
	}
	return -1
}

// Result is one computed correlation matrix plus its provenance.
type Result struct {
	Method       Method
	Matrix       *Matrix
	Observations int
	// Year is set for MethodLatestYear only.
	Year int
}

func indicatorShorts() []string {
	shorts := make([]string, len(models.WGIIndicators))
	for i, ind := range models.WGIIndicators {
		shorts[i] = ind.Short
	}
	return shorts
}

// completeRows drops records missing any indicator and returns the
// remaining values as rows of columns in indicator order.
func completeRows(records []models.WGIRecord) ([][]float64, []int) {
	shorts := indicatorShorts()
	var rows [][]float64
	var years []int
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		row := make([]float64, len(shorts))
		for i, short := range shorts {
			row[i] = *r.Values[short]
		}
		rows = append(rows, row)
		years = append(years, r.Year)
	}
	return rows, years
}

// Correlate computes the correlation matrix for the given method.
func Correlate(records []models.WGIRecord, method Method) (*Result, error) {
	rows, years := completeRows(records)
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 complete observations, have %d", len(rows))
	}

	shorts := indicatorShorts()
	result := &Result{Method: method}

	switch method {
	case MethodPooled, "":
		result.Method = MethodPooled
		result.Matrix = corrFromRows(shorts, rows)
		result.Observations = len(rows)

	case MethodYearlyAverage:
		byYear := make(map[int][][]float64)
		for i, row := range rows {
			byYear[years[i]] = append(byYear[years[i]], row)
		}
		var matrices []*Matrix
		for _, yearRows := range byYear {
			if len(yearRows) > yearlyMinimumRows {
				matrices = append(matrices, corrFromRows(shorts, yearRows))
			}
		}
		if len(matrices) == 0 {
			result.Matrix = corrFromRows(shorts, rows)
		} else {
			result.Matrix = averageMatrices(shorts, matrices)
		}
		result.Observations = len(rows)

	case MethodLatestYear:
		latest := years[0]
		for _, y := range years {
			if y > latest {
				latest = y
			}
		}
		var latestRows [][]float64
		for i, row := range rows {
			if years[i] == latest {
				latestRows = append(latestRows, row)
			}
		}
		if len(latestRows) < 2 {
			return nil, fmt.Errorf("latest year %d has only %d complete observations", latest, len(latestRows))
		}
		result.Matrix = corrFromRows(shorts, latestRows)
		result.Observations = len(latestRows)
		result.Year = latest

	default:
		return nil, fmt.Errorf("unknown correlation method %q", method)
	}

	return result, nil
}

func corrFromRows(indicators []string, rows [][]float64) *Matrix {
	m := newMatrix(indicators)
	n := len(indicators)
	cols := make([][]float64, n)
	for c := 0; c < n; c++ {
		cols[c] = make([]float64, len(rows))
		for r, row := range rows {
			cols[c][r] = row[c]
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := Pearson(cols[i], cols[j])
			m.cells[i][j] = r
			m.cells[j][i] = r
		}
	}
	return m
}

func averageMatrices(indicators []string, matrices []*Matrix) *Matrix {
	m := newMatrix(indicators)
	n := len(indicators)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			var sum float64
			for _, src := range matrices {
				sum += src.cells[i][j]
			}
			m.cells[i][j] = sum / float64(len(matrices))
		}
	}
	return m
}

// Pearson computes the Pearson correlation coefficient of two equal
// length samples. Returns NaN when either sample has zero variance.
func Pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	return cov / math.Sqrt(varX*varY)
}

// Stats summarizes the upper triangle of a correlation matrix.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// UpperTriangleStats computes summary statistics over the distinct
// pairwise correlations.
func UpperTriangleStats(m *Matrix) Stats {
	var values []float64
	n := len(m.Indicators)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			values = append(values, m.cells[i][j])
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Stats{
		Mean:   mean,
		Median: median,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		StdDev: math.Sqrt(sq / float64(len(values))),
	}
}
