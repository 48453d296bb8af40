package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	receiptWidthMM = 80
	lineHeight     = 6
)

// WritePDF renders doc as a PDF. Receipts go on a narrow page whose height
// grows with the number of lines.
func WritePDF(w io.Writer, doc Document) error {
	var pdf *fpdf.Fpdf
	if doc.Receipt {
		lines := 12 + len(doc.Fields)
		for _, t := range doc.Tables {
			lines += len(t.Rows) + 2
		}
		pdf = fpdf.NewCustom(&fpdf.InitType{
			UnitStr: "mm",
			Size:    fpdf.SizeType{Wd: receiptWidthMM, Ht: float64(lines*5 + 20)},
		})
		pdf.SetMargins(4, 6, 4)
		pdf.SetAutoPageBreak(false, 0)
	} else {
		pdf = fpdf.New("P", "mm", "A4", "")
		pdf.SetMargins(12, 12, 12)
		pdf.SetAutoPageBreak(true, 12)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	titleSize, bodySize := 16.0, 10.0
	rowH := float64(lineHeight)
	if doc.Receipt {
		titleSize, bodySize, rowH = 12, 8, 4.5
	}

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(width, rowH+2, tr(doc.Title), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", bodySize+1)
		pdf.CellFormat(width, rowH, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(rowH / 2)

	writeFields := func() {
		pdf.SetFont("Helvetica", "", bodySize)
		for _, f := range doc.Fields {
			pdf.CellFormat(width*0.6, rowH, tr(f.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(width*0.4, rowH, tr(f.Value), "", 1, "R", false, 0, "")
		}
		pdf.Ln(rowH / 2)
	}
	if !doc.Receipt {
		writeFields()
	}

	for _, t := range doc.Tables {
		writeTable(pdf, tr, t, width, rowH, bodySize, doc.Receipt)
	}

	if doc.Receipt {
		writeFields()
	}
	if doc.Footer != "" {
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.CellFormat(width, rowH, tr(doc.Footer), "", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func columnWidths(t Table, width float64, receipt bool) []float64 {
	n := len(t.Columns)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if receipt && n == 3 {
		out[0], out[1], out[2] = width*0.15, width*0.6, width*0.25
		return out
	}
	for i := range out {
		out[i] = width / float64(n)
	}
	return out
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, t Table, width, rowH, size float64, receipt bool) {
	widths := columnWidths(t, width, receipt)
	border := "1"
	if receipt {
		border = ""
	}

	if t.Heading != "" {
		pdf.SetFont("Helvetica", "B", size+1)
		pdf.CellFormat(width, rowH, tr(t.Heading), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", size)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range t.Columns {
		pdf.CellFormat(widths[i], rowH, tr(c), border, 0, "C", !receipt, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", size)
	for _, row := range t.Rows {
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := "L"
			if i > 0 && i == len(t.Columns)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], rowH, tr(cell), border, 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(rowH / 2)
}
