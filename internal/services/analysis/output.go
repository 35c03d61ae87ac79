package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// WriteMatrixCSV saves a correlation matrix with indicator row and
// column labels, values rounded to three decimals.
func WriteMatrixCSV(path string, m *Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{""}, m.Indicators...)); err != nil {
		return err
	}
	for i, ind := range m.Indicators {
		row := make([]string, 0, len(m.Indicators)+1)
		row = append(row, ind)
		for j := range m.Indicators {
			row = append(row, strconv.FormatFloat(round3(m.At(i, j)), 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func round3(v float64) float64 {
	if v < 0 {
		return float64(int64(v*1000-0.5)) / 1000
	}
	return float64(int64(v*1000+0.5)) / 1000
}

// FormatMatrix renders a lower-triangular text view of the matrix.
func FormatMatrix(m *Matrix, title string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, title, rule)

	b.WriteString("      ")
	for _, ind := range m.Indicators {
		fmt.Fprintf(&b, "%7s", ind)
	}
	b.WriteString("\n" + strings.Repeat("-", 50) + "\n")

	for i, ind := range m.Indicators {
		fmt.Fprintf(&b, "%-5s ", ind)
		for j := range m.Indicators {
			switch {
			case i == j:
				fmt.Fprintf(&b, "%7s", "1.00")
			case i > j:
				fmt.Fprintf(&b, "%7.2f", m.At(i, j))
			default:
				fmt.Fprintf(&b, "%7s", "")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatComparison renders the drift table against the published
// study values. Pairs drifting past the threshold are starred.
func FormatComparison(comparisons []Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %10s %10s %12s\n", "Pair", "Reference", "Calculated", "Difference")
	b.WriteString(strings.Repeat("-", 45) + "\n")

	var sum, max float64
	for _, c := range comparisons {
		mark := " "
		if c.Large() {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s-%-6s %10.2f %10.2f %12.3f %s\n",
			c.A, c.B, c.Reference, c.Calculated, c.Difference, mark)
		d := c.Difference
		if d < 0 {
			d = -d
		}
		sum += d
		if d > max {
			max = d
		}
	}

	b.WriteString(strings.Repeat("-", 45) + "\n")
	if len(comparisons) > 0 {
		fmt.Fprintf(&b, "Average absolute difference: %.3f\n", sum/float64(len(comparisons)))
		fmt.Fprintf(&b, "Maximum absolute difference: %.3f\n", max)
	}
	return b.String()
}

// WriteSummary saves the analysis summary text file alongside the
// matrix CSV.
func WriteSummary(path string, result *Result, startYear, endYear int) error {
	var b strings.Builder
	b.WriteString("WGI Correlation Analysis Summary\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Date Range: %d-%d\n", startYear, endYear)
	fmt.Fprintf(&b, "Observations: %d\n", result.Observations)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	b.WriteString(FormatMatrix(result.Matrix, "Correlation Matrix"))

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
