package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ConvertMarkdownToPDF renders a markdown report to a PDF byte slice.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &mdRenderer{pdf: pdf, source: source}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Str("title", title).Msg("Report PDF generated")
	return buf.Bytes(), nil
}

// WritePDF converts markdown and saves it to a file.
func (s *Service) WritePDF(markdown, title, path string) error {
	data, err := s.ConvertMarkdownToPDF(markdown, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Info().Str("path", path).Msg("Report saved")
	return nil
}

type mdRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	bold   bool
	italic bool
	list   int
}

func (r *mdRenderer) bodyFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont("Arial", style, 9)
}

func (r *mdRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(5)
			size := 14.0 - float64(node.Level)
			if size < 9 {
				size = 9
			}
			r.pdf.SetFont("Arial", "B", size)
		} else {
			r.pdf.Ln(6)
			r.bodyFont()
		}

	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(6)
		}

	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
		}

	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.bodyFont()

	case *ast.List:
		if entering {
			r.list++
		} else {
			r.list--
			if r.list == 0 {
				r.pdf.Ln(2)
			}
		}

	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(12 + float64(r.list)*4)
			r.pdf.Write(5, "- ")
		}

	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.Line(12, r.pdf.GetY(), 198, r.pdf.GetY())
			r.pdf.Ln(3)
		}

	case *extast.Table:
		if entering {
			r.renderTable(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *mdRenderer) renderTable(table *extast.Table) {
	var rows [][]string
	var collect func(ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch row := child.(type) {
			case *extast.TableRow:
				rows = append(rows, cellTexts(row, r.source))
			case *extast.TableHeader:
				collect(row)
			}
		}
	}
	collect(table)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	r.pdf.Ln(3)
	width := 186.0 / float64(len(rows[0]))
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont("Arial", "B", 8)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont("Arial", "", 8)
			r.pdf.SetFillColor(255, 255, 255)
		}
		for _, cell := range row {
			r.pdf.CellFormat(width, 5, cell, "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(3)
	r.bodyFont()
}

func cellTexts(row *extast.TableRow, source []byte) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if c, ok := cell.(*extast.TableCell); ok {
			out = append(out, string(c.Text(source)))
		}
	}
	return out
}
