package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/username/ledgerbook/backend/src/ledger"
	"github.com/username/ledgerbook/backend/src/models"
)

// Report type selectors for statement rendering.
const (
	ReportTypeFull    = "full"
	ReportTypeSummary = "summary"
	ReportTypeKESOnly = "kes-only"
	ReportTypeUSDOnly = "usd-only"
)

// Delivery receives the finished artifact and its file name. It lets the
// caller decide between download, native share and upload without the
// renderer knowing about transports. A nil Delivery means the caller takes
// the returned bytes and performs the default download itself.
type Delivery func(artifact []byte, filename string) error

// StatementData is the input to one statement render: a client identity
// (real or combined) plus its per-currency transaction lists.
type StatementData struct {
	DisplayName string
	DisplayCode string
	Phone       string
	KES         []models.Transaction
	USD         []models.Transaction
	ReportType  string
}

// StatementRenderer produces the paginated client statement PDF. Now is
// injectable so renders are reproducible in tests; it defaults to time.Now.
type StatementRenderer struct {
	Brand               string
	ConfidentialityNote string
	Now                 func() time.Time
}

func NewStatementRenderer(brand, confidentialityNote string) *StatementRenderer {
	return &StatementRenderer{
		Brand:               brand,
		ConfidentialityNote: confidentialityNote,
		Now:                 time.Now,
	}
}

// Layout constants, all in millimetres on A4 portrait.
const (
	pageMargin   = 10.0
	bottomGuard  = 25.0 // auto page break margin, leaves room for the footer
	lineHeight   = 5.0
	colDate      = 22.0
	colDesc      = 78.0
	colMoneyIn   = 30.0
	colMoneyOut  = 30.0
	colBalance   = 30.0
	summaryLabel = 60.0
	summaryValue = 60.0
)

// Section label colors, one per currency.
var sectionColors = map[string][3]int{
	models.CurrencyKES: {0, 102, 51},  // green
	models.CurrencyUSD: {0, 51, 153},  // blue
}

// Render builds the statement PDF and its file name. When deliver is
// non-nil the artifact is handed to it after a successful build; any
// delivery error is returned as-is. Nothing is emitted on a generation
// failure, the caller only ever sees a complete document or an error.
func (r *StatementRenderer) Render(data StatementData, deliver Delivery) ([]byte, string, error) {
	generatedAt := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomGuard)
	pdf.AliasNbPages("")
	r.setFooter(pdf, generatedAt)

	pdf.AddPage()
	r.drawHeader(pdf, data, generatedAt)

	kesSelected := data.ReportType == ReportTypeFull || data.ReportType == ReportTypeSummary || data.ReportType == ReportTypeKESOnly
	usdSelected := data.ReportType == ReportTypeFull || data.ReportType == ReportTypeSummary || data.ReportType == ReportTypeUSDOnly
	summaryOnly := data.ReportType == ReportTypeSummary

	rendered := 0
	if kesSelected && len(data.KES) > 0 {
		r.drawCurrencySection(pdf, models.CurrencyKES, data.KES, summaryOnly)
		rendered++
	}
	if usdSelected && len(data.USD) > 0 {
		r.drawCurrencySection(pdf, models.CurrencyUSD, data.USD, summaryOnly)
		rendered++
	}
	if rendered == 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 11)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(0, 8, "No transactions recorded for this statement.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("statement generation failed: %w", err)
	}

	filename := StatementFileName(r.Brand, data.DisplayCode, generatedAt)
	artifact := buf.Bytes()
	if deliver != nil {
		if err := deliver(artifact, filename); err != nil {
			return nil, "", err
		}
	}
	return artifact, filename, nil
}

func (r *StatementRenderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *StatementRenderer) drawHeader(pdf *fpdf.Fpdf, data StatementData, generatedAt time.Time) {
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 9, r.Brand, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "STATEMENT", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Generated: "+generatedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 6, data.DisplayName, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Code: "+data.DisplayCode, "", 1, "L", false, 0, "")
	if data.Phone != "" {
		pdf.CellFormat(0, 5, "Phone: "+data.Phone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func (r *StatementRenderer) setFooter(pdf *fpdf.Fpdf, generatedAt time.Time) {
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(63, 5, r.ConfidentialityNote, "", 0, "L", false, 0, "")
		pdf.CellFormat(64, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.CellFormat(63, 5, generatedAt.Format("2006-01-02"), "", 0, "R", false, 0, "")
	})
}

func (r *StatementRenderer) drawCurrencySection(pdf *fpdf.Fpdf, currency string, txs []models.Transaction, summaryOnly bool) {
	entries, summary := ledger.Aggregate(txs)

	color := sectionColors[currency]
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.CellFormat(0, 7, currency+" Ledger", "", 1, "L", false, 0, "")
	pdf.SetTextColor(33, 33, 33)

	if summaryOnly {
		r.drawSummaryTable(pdf, currency, summary)
	} else {
		r.drawTransactionTable(pdf, currency, entries, summary)
	}

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, fmt.Sprintf("Mileage (mg) trips: %d", ledger.MileageCount(txs)), "", 1, "L", false, 0, "")
	pdf.SetTextColor(33, 33, 33)
}

func (r *StatementRenderer) drawTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colDate, 6, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colDesc, 6, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colMoneyIn, 6, "Money In", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colMoneyOut, 6, "Money Out", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colBalance, 6, "Balance", "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 9)
}

func (r *StatementRenderer) drawTransactionTable(pdf *fpdf.Fpdf, currency string, entries []models.LedgerEntry, summary models.Summary) {
	r.drawTableHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - bottomGuard

	for _, e := range entries {
		descLines := pdf.SplitText(e.Description, colDesc-2)
		if len(descLines) == 0 {
			descLines = []string{""}
		}
		rowHeight := float64(len(descLines)) * lineHeight

		// Never split a single row across a page boundary.
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			r.drawTableHeader(pdf)
		}

		x, y := pdf.GetXY()
		pdf.CellFormat(colDate, rowHeight, e.Date, "1", 0, "L", false, 0, "")
		pdf.MultiCell(colDesc, lineHeight, e.Description, "1", "L", false)
		pdf.SetXY(x+colDate+colDesc, y)
		pdf.CellFormat(colMoneyIn, rowHeight, moneyCell(e.Credit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colMoneyOut, rowHeight, moneyCell(e.Debit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colBalance, rowHeight, fmt.Sprintf("%.2f", e.Balance), "1", 1, "R", false, 0, "")
	}

	// Totals row mirrors the summary sums; negatives keep their sign prefix.
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(colDate+colDesc, 6, "Totals", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colMoneyIn, 6, ledger.FormatAmount(summary.Paid, currency), "1", 0, "R", true, 0, "")
	pdf.CellFormat(colMoneyOut, 6, ledger.FormatAmount(summary.Receivable, currency), "1", 0, "R", true, 0, "")
	pdf.CellFormat(colBalance, 6, ledger.FormatAmount(summary.Balance, currency), "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 9)
}

func (r *StatementRenderer) drawSummaryTable(pdf *fpdf.Fpdf, currency string, summary models.Summary) {
	pdf.SetFont("Arial", "", 9)
	rows := []struct {
		label string
		value float64
	}{
		{"Total Paid", summary.Paid},
		{"Total Receivable", summary.Receivable},
		{"Net Balance", summary.Balance},
	}
	for _, row := range rows {
		pdf.CellFormat(summaryLabel, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(summaryValue, 6, ledger.FormatAmount(row.value, currency), "1", 1, "R", false, 0, "")
	}
}

// moneyCell leaves zero amounts blank so the eye lands on the side of the
// ledger the entry belongs to.
func moneyCell(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}
