package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/username/ledgerbook/backend/src/ledger"
	"github.com/username/ledgerbook/backend/src/models"
)

// FinancialReportRenderer produces the analytics PDF: header band, summary
// statistics table, top-10 clients table and monthly trend table, with page
// numbers and the generation date on every page footer.
type FinancialReportRenderer struct {
	Brand string
	Now   func() time.Time
}

func NewFinancialReportRenderer(brand string) *FinancialReportRenderer {
	return &FinancialReportRenderer{Brand: brand, Now: time.Now}
}

// Render builds the PDF and its file name. Same delivery contract as the
// statement renderer: nil deliver means the caller handles the download.
func (r *FinancialReportRenderer) Render(report *models.AnalyticsReport, deliver Delivery) ([]byte, string, error) {
	generatedAt := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomGuard)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(95, 5, generatedAt.Format("2006-01-02"), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 9, r.Brand, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "FINANCIAL REPORT", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Period: %s to %s", report.StartDate, report.EndDate), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	r.drawStats(pdf, report.Stats)
	r.drawTopClients(pdf, report.TopClients)
	r.drawMonthlyTrends(pdf, report.Monthly)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("financial report generation failed: %w", err)
	}
	filename := FinancialReportFileName(r.Brand, generatedAt)
	artifact := buf.Bytes()
	if deliver != nil {
		if err := deliver(artifact, filename); err != nil {
			return nil, "", err
		}
	}
	return artifact, filename, nil
}

func (r *FinancialReportRenderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *FinancialReportRenderer) drawStats(pdf *fpdf.Fpdf, stats models.ClientStats) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 7, "Summary Statistics", "", 1, "L", false, 0, "")

	rows := []struct {
		label string
		value string
	}{
		{"Total Clients", fmt.Sprintf("%d", stats.TotalClients)},
		{"Active Clients", fmt.Sprintf("%d", stats.ActiveClients)},
		{"Inactive Clients", fmt.Sprintf("%d", stats.InactiveClients)},
		{"Total Transactions", fmt.Sprintf("%d", stats.TotalTransactions)},
		{"Total Balance (KES)", ledger.FormatAmount(stats.TotalBalanceKES, models.CurrencyKES)},
		{"Total Balance (USD)", ledger.FormatAmount(stats.TotalBalanceUSD, models.CurrencyUSD)},
	}
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(summaryLabel, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(summaryValue, 6, row.value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *FinancialReportRenderer) drawTopClients(pdf *fpdf.Fpdf, clients []models.ClientRollup) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Top Clients", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(12, 6, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(63, 6, "Client", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 6, "Code", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 6, "KES Balance", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 6, "USD Balance", "1", 0, "R", true, 0, "")
	pdf.CellFormat(20, 6, "Txns", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	if len(clients) == 0 {
		pdf.CellFormat(190, 6, "No transactions in the selected period.", "1", 1, "C", false, 0, "")
	}
	for i, c := range clients {
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(63, 6, c.ClientName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, c.ClientCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, ledger.FormatAmount(c.BalanceKES, models.CurrencyKES), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, ledger.FormatAmount(c.BalanceUSD, models.CurrencyUSD), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", c.TransactionCount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *FinancialReportRenderer) drawMonthlyTrends(pdf *fpdf.Fpdf, months []models.MonthlyTrend) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Monthly Trends", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(30, 6, "Month", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 6, "KES Txns", "1", 0, "R", true, 0, "")
	pdf.CellFormat(50, 6, "KES Net", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 6, "USD Txns", "1", 0, "R", true, 0, "")
	pdf.CellFormat(50, 6, "USD Net", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	if len(months) == 0 {
		pdf.CellFormat(190, 6, "No transactions in the selected period.", "1", 1, "C", false, 0, "")
	}
	for _, m := range months {
		pdf.CellFormat(30, 6, m.Month, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", m.KESCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, ledger.FormatAmount(m.KESNet, models.CurrencyKES), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", m.USDCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, ledger.FormatAmount(m.USDNet, models.CurrencyUSD), "1", 1, "R", false, 0, "")
	}
}
