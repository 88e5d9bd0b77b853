package reports

import (
	"fmt"
	"strings"
	"time"
)

const fileDateLayout = "2006-01-02"

// StatementFileName builds the download name for a client statement, e.g.
// "LedgerBook_Statement_AC01_2024-08-15.pdf". Combined statements pass the
// joined display code and end up with every client code in the name.
func StatementFileName(brand, clientCode string, t time.Time) string {
	return fmt.Sprintf("%s_Statement_%s_%s.pdf", fileSafe(brand), fileSafe(clientCode), t.Format(fileDateLayout))
}

// FinancialReportFileName builds the download name for the analytics PDF.
func FinancialReportFileName(brand string, t time.Time) string {
	return fmt.Sprintf("%s_Financial_Report_%s.pdf", fileSafe(brand), t.Format(fileDateLayout))
}

// CSVReportFileName builds the download name for the analytics CSV.
func CSVReportFileName(brand string, t time.Time) string {
	return fmt.Sprintf("%s_Report_%s.csv", fileSafe(brand), t.Format(fileDateLayout))
}

// fileSafe collapses anything outside [A-Za-z0-9_-] into single underscores
// so display codes like "AC01 + BT02" become "AC01_BT02".
func fileSafe(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
