package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedDate = time.Date(2024, 8, 15, 13, 45, 0, 0, time.UTC)

func TestStatementFileName(t *testing.T) {
	assert.Equal(t, "LedgerBook_Statement_AC01_2024-08-15.pdf",
		StatementFileName("LedgerBook", "AC01", fixedDate))
}

func TestStatementFileNameCombinedCodes(t *testing.T) {
	assert.Equal(t, "LedgerBook_Statement_AC01_BT02_2024-08-15.pdf",
		StatementFileName("LedgerBook", "AC01 + BT02", fixedDate))
}

func TestFinancialReportFileName(t *testing.T) {
	assert.Equal(t, "LedgerBook_Financial_Report_2024-08-15.pdf",
		FinancialReportFileName("LedgerBook", fixedDate))
}

func TestCSVReportFileName(t *testing.T) {
	assert.Equal(t, "LedgerBook_Report_2024-08-15.csv",
		CSVReportFileName("LedgerBook", fixedDate))
}

func TestFileSafeStripsOddCharacters(t *testing.T) {
	assert.Equal(t, "LedgerBook_Statement_A_B_2024-08-15.pdf",
		StatementFileName("LedgerBook", "A/..\\B!", fixedDate))
}
