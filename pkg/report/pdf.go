package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var pdfColumnWidths = []float64{45, 55, 32, 32, 26}

// rune limits that keep cells inside their column at the body font size
var pdfColumnLimits = []int{28, 34, 20, 20, 16}

// PDFRenderer renders an A4 portrait document
type PDFRenderer struct{}

// ContentType implements Renderer
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer
func (PDFRenderer) Extension() string { return "pdf" }

// Render implements Renderer
func (PDFRenderer) Render(w io.Writer, snap *Snapshot) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(snap.Title(), true)
	pdf.SetCreationDate(snap.GeneratedAt)
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(snap.Title()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	summary := [][2]string{
		{"Group Name:", snap.Group.Name},
		{"Email:", snap.Group.Email},
		{"Description:", snap.Description()},
		{"Total Members:", fmt.Sprintf("%d", len(snap.Members))},
		{"Generated:", snap.GeneratedAt.Format(DateTimeLayout)},
	}
	for _, line := range summary {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(32, 6, line[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(line[1]), "", "L", false)
	}
	pdf.Ln(6)

	if len(snap.Members) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, EmptyMessage, "", 1, "L", false, 0, "")
		return pdf.Output(w)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for i, c := range Columns {
		pdf.CellFormat(pdfColumnWidths[i], 8, c, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range snap.Rows() {
		for i, cell := range row {
			pdf.CellFormat(pdfColumnWidths[i], 6, tr(Truncate(cell, pdfColumnLimits[i])), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
