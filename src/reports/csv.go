package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/ledgerbook/backend/src/models"
	"github.com/username/ledgerbook/backend/src/security/validation"
)

// ExportCSV serializes an analytics report to the flat text layout consumed
// by spreadsheet imports: one header line, then the SUMMARY STATISTICS,
// TOP CLIENTS and MONTHLY TRENDS blocks separated by blank lines. Block and
// field order are fixed; golden-file tests depend on the exact bytes.
// Numbers are plain decimals, never currency-formatted.
func ExportCSV(report *models.AnalyticsReport, brand string, generatedAt time.Time) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Financial Report,%s to %s\n", brand, report.StartDate, report.EndDate)
	b.WriteString("\n")

	b.WriteString("SUMMARY STATISTICS\n")
	fmt.Fprintf(&b, "Total Clients,%d\n", report.Stats.TotalClients)
	fmt.Fprintf(&b, "Active Clients,%d\n", report.Stats.ActiveClients)
	fmt.Fprintf(&b, "Inactive Clients,%d\n", report.Stats.InactiveClients)
	fmt.Fprintf(&b, "Total Transactions,%d\n", report.Stats.TotalTransactions)
	fmt.Fprintf(&b, "Total Balance (KES),%s\n", formatNumber(report.Stats.TotalBalanceKES))
	fmt.Fprintf(&b, "Total Balance (USD),%s\n", formatNumber(report.Stats.TotalBalanceUSD))
	b.WriteString("\n")

	b.WriteString("TOP CLIENTS\n")
	b.WriteString("Rank,Name,Code,KES Balance,USD Balance,Transactions\n")
	for i, c := range report.TopClients {
		name := validation.SanitizeForFormulaInjection(c.ClientName)
		fmt.Fprintf(&b, "%d,%q,%s,%s,%s,%d\n",
			i+1, name, c.ClientCode,
			formatNumber(c.BalanceKES), formatNumber(c.BalanceUSD), c.TransactionCount)
	}
	b.WriteString("\n")

	b.WriteString("MONTHLY TRENDS\n")
	b.WriteString("Month,KES Transactions,KES Net,USD Transactions,USD Net\n")
	for _, m := range report.Monthly {
		fmt.Fprintf(&b, "%s,%d,%s,%d,%s\n",
			m.Month, m.KESCount, formatNumber(m.KESNet), m.USDCount, formatNumber(m.USDNet))
	}

	return []byte(b.String())
}

// formatNumber emits the shortest plain decimal representation, so 10000.0
// becomes "10000" and 250.5 stays "250.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
