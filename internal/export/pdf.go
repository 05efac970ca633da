package export

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/alexanderramin/prdchat/internal/domain"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFont = "Helvetica"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func (pf *PDFFormatter) Format(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	// Core fonts are cp1252; translate UTF-8 text into that code page.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(pdfFont, "B", 20)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(12)

	pdf.SetFont(pdfFont, "", 9)
	pdf.Cell(0, 6, "Generated "+doc.GeneratedAt.Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	if len(doc.Profile) > 0 {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.Cell(0, 8, "Company profile")
		pdf.Ln(9)
		for _, k := range domain.SortedKeys(doc.Profile) {
			pdf.SetFont(pdfFont, "B", 11)
			pdf.MultiCell(0, 6, tr(k), "", "", false)
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, 6, tr(doc.Profile[k]), "", "", false)
			pdf.Ln(1)
		}
		pdf.Ln(4)
	}

	writeMarkdownBody(pdf, tr, doc.Body)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMarkdownBody lays out headings and paragraphs; other markup is kept as text.
func writeMarkdownBody(pdf *gofpdf.Fpdf, tr func(string) string, body string) {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case strings.HasPrefix(trimmed, "# "):
			pdf.SetFont(pdfFont, "B", 16)
			pdf.MultiCell(0, 8, tr(strings.TrimPrefix(trimmed, "# ")), "", "", false)
		case strings.HasPrefix(trimmed, "## "):
			pdf.SetFont(pdfFont, "B", 14)
			pdf.MultiCell(0, 7, tr(strings.TrimPrefix(trimmed, "## ")), "", "", false)
		case strings.HasPrefix(trimmed, "### "):
			pdf.SetFont(pdfFont, "B", 12)
			pdf.MultiCell(0, 6, tr(strings.TrimPrefix(trimmed, "### ")), "", "", false)
		default:
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, 5.5, tr(strings.ReplaceAll(line, "**", "")), "", "", false)
		}
	}
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
