package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfRowHeight  = 7.0
	pdfFontSize   = 8.0
	pdfTitleSize  = 14.0
	pdfMargin     = 10.0
	pdfEllipsis   = "..."
	pdfFontFamily = "Helvetica"
)

// pdfColumnWeights share the printable width between the Headers columns.
var pdfColumnWeights = []float64{1.6, 1.4, 1.1, 1.0, 1.1, 1.3, 1.1, 1.3, 1.2, 0.9, 0.9}

// ToPDF renders rows as a landscape A4 table. The header row repeats on
// every page and cells that do not fit are cut with an ellipsis.
func ToPDF(rows []Row, title string) ([]byte, error) {
	pdf := buildPDF(rows, title)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPDF(rows []Row, title string) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	// Core fonts are cp1252; this maps the currency symbols and accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(pageWidth - 2*pdfMargin)

	header := func() {
		pdf.SetFont(pdfFontFamily, "B", pdfFontSize)
		pdf.SetFillColor(241, 245, 249)
		for i, h := range Headers {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	header()

	for _, r := range rows {
		for i, v := range r.fields() {
			pdf.CellFormat(widths[i], pdfRowHeight, fitText(pdf, tr(v), widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}

func columnWidths(total float64) []float64 {
	var sum float64
	for _, w := range pdfColumnWeights {
		sum += w
	}
	out := make([]float64, len(pdfColumnWeights))
	for i, w := range pdfColumnWeights {
		out[i] = total * w / sum
	}
	return out
}

// fitText shortens s until it fits in width at the current font. s is
// already cp1252 encoded, one byte per glyph.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		cut := s[:n] + pdfEllipsis
		if pdf.GetStringWidth(cut) <= width {
			return cut
		}
	}
	return ""
}
