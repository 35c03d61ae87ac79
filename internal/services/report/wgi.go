package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/sovereign/internal/models"
	"github.com/ternarybob/sovereign/internal/services/analysis"
)

// WGIMarkdown builds the governance-indicator analysis report as
// markdown, ready for PDF conversion.
func (s *Service) WGIMarkdown(results []*analysis.Result, startYear, endYear int) string {
	var b strings.Builder

	b.WriteString("# Worldwide Governance Indicators: Correlation Analysis\n\n")
	fmt.Fprintf(&b, "Period: %d-%d. Generated %s.\n\n", startYear, endYear,
		time.Now().Format("2006-01-02"))

	b.WriteString("## Indicators\n\n")
	b.WriteString("| Code | Short | Indicator |\n|---|---|---|\n")
	for _, ind := range models.WGIIndicators {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", ind.Code, ind.Short, ind.Name)
	}
	b.WriteString("\n")

	var pooled *analysis.Result
	for _, result := range results {
		b.WriteString("## " + methodTitle(result) + "\n\n")
		writeMatrixTable(&b, result.Matrix)
		if result.Method == analysis.MethodPooled {
			pooled = result
		}
	}

	if pooled != nil {
		stats := analysis.UpperTriangleStats(pooled.Matrix)
		b.WriteString("## Summary Statistics (Pooled)\n\n")
		fmt.Fprintf(&b, "- Observations: %d\n", pooled.Observations)
		fmt.Fprintf(&b, "- Average correlation: %.3f\n", stats.Mean)
		fmt.Fprintf(&b, "- Median correlation: %.3f\n", stats.Median)
		fmt.Fprintf(&b, "- Minimum correlation: %.3f\n", stats.Min)
		fmt.Fprintf(&b, "- Maximum correlation: %.3f\n", stats.Max)
		fmt.Fprintf(&b, "- Standard deviation: %.3f\n\n", stats.StdDev)

		b.WriteString("## Comparison with Published Values\n\n")
		b.WriteString("| Pair | Published | Calculated | Difference |\n|---|---|---|---|\n")
		for _, c := range analysis.CompareWithReference(pooled.Matrix) {
			mark := ""
			if c.Large() {
				mark = " *"
			}
			fmt.Fprintf(&b, "| %s-%s | %.2f | %.2f | %.3f%s |\n",
				c.A, c.B, c.Reference, c.Calculated, c.Difference, mark)
		}
		b.WriteString("\nPairs marked with * drifted more than 0.05 from the published table.\n")
	}

	return b.String()
}

func methodTitle(r *analysis.Result) string {
	switch r.Method {
	case analysis.MethodPooled:
		return fmt.Sprintf("Pooled Correlation (n=%d)", r.Observations)
	case analysis.MethodYearlyAverage:
		return "Average Yearly Correlation"
	case analysis.MethodLatestYear:
		return fmt.Sprintf("Latest Year Correlation (%d, n=%d)", r.Year, r.Observations)
	}
	return string(r.Method)
}

func writeMatrixTable(b *strings.Builder, m *analysis.Matrix) {
	b.WriteString("| |")
	for _, ind := range m.Indicators {
		b.WriteString(" " + ind + " |")
	}
	b.WriteString("\n|---|")
	for range m.Indicators {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for i, ind := range m.Indicators {
		fmt.Fprintf(b, "| %s |", ind)
		for j := range m.Indicators {
			fmt.Fprintf(b, " %.2f |", m.At(i, j))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
