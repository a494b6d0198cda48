package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hyperifyio/p2pscrape/internal/listing"
)

// PDFOptions controls schedule rendering.
type PDFOptions struct {
	// FontPath is a UTF-8 TrueType font. Without it the core Helvetica font
	// is used and characters outside cp1252 are replaced.
	FontPath string
	// FigureHeaders label the four figure columns.
	FigureHeaders [listing.FigureCount]string
}

var defaultFigureHeaders = [listing.FigureCount]string{"Figure 1", "Figure 2", "Figure 3", "Figure 4"}

const (
	dateColWidth   = 34.0
	figureColWidth = 36.0
	rowHeight      = 6.0
)

// WritePDF renders l as a one-table repayment schedule.
func WritePDF(w io.Writer, l listing.Listing, opts PDFOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		family = "body"
		pdf.AddUTF8Font(family, "", opts.FontPath)
		pdf.AddUTF8Font(family, "B", opts.FontPath)
		tr = func(s string) string { return s }
	}
	headers := opts.FigureHeaders
	if headers == ([listing.FigureCount]string{}) {
		headers = defaultFigureHeaders
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(0, 8, tr(l.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	summary := fmt.Sprintf("Grade %s | %d periods | %.2f%% | %s", l.Grade, l.Duration, l.AnnualPercentageYield*100, groupThousands(l.Amount))
	pdf.CellFormat(0, 6, tr(summary), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(dateColWidth, rowHeight, "Date", "1", 0, "C", true, 0, "")
	for _, h := range headers {
		pdf.CellFormat(figureColWidth, rowHeight, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 10)
	for _, r := range l.Records {
		pdf.CellFormat(dateColWidth, rowHeight, r.Date.String(), "1", 0, "C", false, 0, "")
		for _, v := range r.Figures {
			pdf.CellFormat(figureColWidth, rowHeight, groupThousands(v), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(dateColWidth, rowHeight, "Total", "1", 0, "C", true, 0, "")
	for _, v := range l.Totals() {
		pdf.CellFormat(figureColWidth, rowHeight, groupThousands(v), "1", 0, "R", true, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WritePDFFile renders l to path.
func WritePDFFile(path string, l listing.Listing, opts PDFOptions) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, l, opts); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// groupThousands formats n with Korean digit grouping, the inverse of what
// numeric.Int strips.
func groupThousands(n int64) string {
	return message.NewPrinter(language.Korean).Sprintf("%d", n)
}
