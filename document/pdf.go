package document

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	labelWidth  = 50.0
	signatureAt = 90.0
)

// PDFGenerator renders records as Letter-size PDF.
type PDFGenerator struct {
	Font string
}

// NewPDFGenerator returns a generator using Helvetica.
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{Font: "Helvetica"}
}

func (g *PDFGenerator) ContentType() string { return "application/pdf" }

// Generate renders rec. The context is checked once; rendering itself is
// in-memory.
func (g *PDFGenerator) Generate(ctx context.Context, rec Record) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, _ := pdf.GetPageSize()
	body := width - 2*pageMargin

	if rec.Company != "" {
		pdf.SetFont(g.Font, "", 10)
		pdf.CellFormat(body, lineHeight, tr(rec.Company), "", 1, "C", false, 0, "")
	}
	pdf.SetFont(g.Font, "B", 16)
	pdf.CellFormat(body, 10, tr(rec.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.employee(pdf, tr, rec.Employee, body)
	g.fields(pdf, tr, rec.Fields, body)
	if rec.Table != nil {
		g.table(pdf, tr, *rec.Table, body)
	}
	for _, s := range rec.Sections {
		pdf.SetFont(g.Font, "B", 11)
		pdf.CellFormat(body, lineHeight, tr(s.Heading), "", 1, "L", false, 0, "")
		pdf.SetFont(g.Font, "", 10)
		pdf.MultiCell(body, 5, tr(s.Body), "", "L", false)
		pdf.Ln(3)
	}
	g.signatures(pdf, body)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", rec.Title, err)
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) employee(pdf *gofpdf.Fpdf, tr func(string) string, e Employee, body float64) {
	rows := []Field{
		{Label: "Employee", Value: e.Name},
		{Label: "Employee Number", Value: strconv.FormatInt(e.Number, 10)},
	}
	if e.Position != "" {
		rows = append(rows, Field{Label: "Position", Value: e.Position})
	}
	if !e.HireDate.IsZero() {
		rows = append(rows, Field{Label: "Hire Date", Value: e.HireDate.Format("01/02/2006")})
	}
	g.fields(pdf, tr, rows, body)
	pdf.Line(pageMargin, pdf.GetY(), pageMargin+body, pdf.GetY())
	pdf.Ln(3)
}

func (g *PDFGenerator) fields(pdf *gofpdf.Fpdf, tr func(string) string, fields []Field, body float64) {
	for _, f := range fields {
		pdf.SetFont(g.Font, "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(g.Font, "", 10)
		pdf.MultiCell(body-labelWidth, lineHeight, tr(f.Value), "", "L", false)
	}
	if len(fields) > 0 {
		pdf.Ln(2)
	}
}

func (g *PDFGenerator) table(pdf *gofpdf.Fpdf, tr func(string) string, t Table, body float64) {
	if len(t.Columns) == 0 {
		return
	}
	if t.Heading != "" {
		pdf.SetFont(g.Font, "B", 11)
		pdf.CellFormat(body, lineHeight, tr(t.Heading), "", 1, "L", false, 0, "")
	}
	col := body / float64(len(t.Columns))

	pdf.SetFont(g.Font, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range t.Columns {
		pdf.CellFormat(col, lineHeight, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.Font, "", 9)
	for _, row := range t.Rows {
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(col, lineHeight, tr(cell), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func (g *PDFGenerator) signatures(pdf *gofpdf.Fpdf, body float64) {
	pdf.Ln(10)
	pdf.SetFont(g.Font, "", 10)
	for _, who := range []string{"Employee Signature", "Supervisor Signature"} {
		y := pdf.GetY()
		pdf.Line(pageMargin, y, pageMargin+signatureAt, y)
		pdf.Line(pageMargin+signatureAt+10, y, pageMargin+body, y)
		pdf.CellFormat(signatureAt+10, lineHeight, who, "", 0, "L", false, 0, "")
		pdf.CellFormat(body-signatureAt-10, lineHeight, "Date", "", 1, "L", false, 0, "")
		pdf.Ln(10)
	}
}
