package services

import (
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/ledgerbook/backend/src/analytics"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/models"
	"github.com/username/ledgerbook/backend/src/parsers/ledgercsv"
	"github.com/username/ledgerbook/backend/src/store"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (*ledgerService, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(on)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../db/migrations/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (username, email, password, created_at, updated_at) VALUES ('tester', 't@example.com', 'x', ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)

	svc := NewLedgerService(db, "LedgerBook", "Confidential", 130, cache.New(time.Minute, time.Minute)).(*ledgerService)
	svc.now = func() time.Time { return time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC) }
	svc.statements.Now = svc.now
	svc.financial.Now = svc.now
	return svc, db
}

func seedLedger(t *testing.T, db *sql.DB) (acme, beta *models.Client) {
	t.Helper()
	acme = &models.Client{UserID: 1, Name: "Acme Ltd", Code: "AC01", Phone: "+254700000000"}
	beta = &models.Client{UserID: 1, Name: "Beta Co", Code: "BT02"}
	require.NoError(t, store.CreateClient(db, acme))
	require.NoError(t, store.CreateClient(db, beta))

	entries := []models.Transaction{
		{ClientID: acme.ID, Currency: "KES", Date: "2024-07-05", Description: "payment", Credit: 1000},
		{ClientID: acme.ID, Currency: "KES", Date: "2024-07-10", Description: "MG run", Debit: 400},
		{ClientID: acme.ID, Currency: "USD", Date: "2024-07-12", Description: "consulting", Credit: 250},
		{ClientID: beta.ID, Currency: "KES", Date: "2024-07-08", Description: "supplies", Debit: 300},
	}
	for i := range entries {
		require.NoError(t, store.CreateTransaction(db, 1, &entries[i]))
	}
	return acme, beta
}

func TestImportTransactions(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit",
		"2024-07-20,KES,<b>imported</b> payment,,500",
		"not-a-date,KES,broken row,,100",
		"2024-07-21,USD,consulting,,75",
	}, "\n")

	result, err := svc.ImportTransactions(1, acme.ID, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	kes, err := store.ListTransactions(db, 1, acme.ID, models.CurrencyKES, false)
	require.NoError(t, err)
	require.Len(t, kes, 3)
	// Imported descriptions are sanitized like form input.
	assert.Equal(t, "imported payment", kes[2].Description)
	assert.Equal(t, 500.0, kes[2].Credit)

	usd, err := store.ListTransactions(db, 1, acme.ID, models.CurrencyUSD, false)
	require.NoError(t, err)
	assert.Len(t, usd, 2)
}

func TestImportTransactionsUnknownClient(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportTransactions(1, 404, strings.NewReader("Date,Currency,Description,Debit,Credit\n"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportTransactionsBadHeader(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	_, err := svc.ImportTransactions(1, acme.ID, strings.NewReader("Amount,Stuff\n1,2\n"))
	assert.ErrorIs(t, err, ledgercsv.ErrInvalidFormat)

	// Nothing was written on a structural failure.
	kes, err := store.ListTransactions(db, 1, acme.ID, models.CurrencyKES, false)
	require.NoError(t, err)
	assert.Len(t, kes, 2)
}

func TestGetClientLedger(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	view, err := svc.GetClientLedger(1, acme.ID)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", view.Client.Name)
	require.Len(t, view.KES, 2)
	// Display order: newest first, balance counting backwards.
	assert.Equal(t, "2024-07-10", view.KES[0].Date)
	assert.Equal(t, 600.0, view.KES[0].Balance)
	assert.Equal(t, "2024-07-05", view.KES[1].Date)
	assert.Equal(t, 1000.0, view.KES[1].Balance)

	assert.Equal(t, models.Summary{Paid: 1000, Receivable: 400, Balance: 600}, view.KESSummary)
	assert.Equal(t, models.Summary{Paid: 250, Receivable: 0, Balance: 250}, view.USDSummary)
}

func TestGetClientLedgerNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetClientLedger(1, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBuildStatement(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	var deliveredName string
	artifact, filename, err := svc.BuildStatement(1, acme.ID, "full", func(b []byte, name string) error {
		deliveredName = name
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Statement_AC01_2024-08-15.pdf", filename)
	assert.Equal(t, filename, deliveredName)
}

func TestBuildCombinedStatement(t *testing.T) {
	svc, db := newTestService(t)
	acme, beta := seedLedger(t, db)

	artifact, filename, err := svc.BuildCombinedStatement(1, []int64{acme.ID, beta.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Statement_AC01_BT02_2024-08-15.pdf", filename)
}

func TestBuildCombinedStatementNoClients(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.BuildCombinedStatement(1, nil, nil)
	assert.ErrorIs(t, err, ErrNoClientsGiven)
}

func TestRunAnalyticsAndSessionReuse(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	session, err := svc.RunAnalytics(1, analytics.RangeThisYear, "", "")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, 4, session.Report.Stats.TotalTransactions)
	assert.Equal(t, 300.0, session.Report.Stats.TotalBalanceKES)
	assert.Equal(t, 250.0, session.Report.Stats.TotalBalanceUSD)
	require.NotEmpty(t, session.Report.TopClients)
	assert.Equal(t, "AC01", session.Report.TopClients[0].ClientCode)

	artifact, filename, err := svc.CombinedStatementFromSession(1, session.Token, []int64{acme.ID})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Statement_AC01_2024-08-15.pdf", filename)
}

func TestCombinedStatementFromSessionExpired(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	_, _, err := svc.CombinedStatementFromSession(1, "missing-token", []int64{acme.ID})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestCombinedStatementFromSessionWrongUser(t *testing.T) {
	svc, db := newTestService(t)
	acme, _ := seedLedger(t, db)

	session, err := svc.RunAnalytics(1, analytics.RangeThisYear, "", "")
	require.NoError(t, err)

	_, _, err = svc.CombinedStatementFromSession(2, session.Token, []int64{acme.ID})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRunAnalyticsIncompleteCustomRange(t *testing.T) {
	svc, _ := newTestService(t)

	// Validation fails before any database work.
	_, err := svc.RunAnalytics(1, analytics.RangeCustom, "2024-01-01", "")
	assert.ErrorIs(t, err, analytics.ErrIncompleteRange)
}

func TestExportAnalyticsCSV(t *testing.T) {
	svc, db := newTestService(t)
	seedLedger(t, db)

	artifact, filename, err := svc.ExportAnalyticsCSV(1, analytics.RangeThisYear, "", "")
	require.NoError(t, err)
	assert.Equal(t, "LedgerBook_Report_2024-08-15.csv", filename)
	assert.Contains(t, string(artifact), "SUMMARY STATISTICS")
	assert.Contains(t, string(artifact), "Total Transactions,4")
}

func TestExportAnalyticsPDF(t *testing.T) {
	svc, db := newTestService(t)
	seedLedger(t, db)

	artifact, filename, err := svc.ExportAnalyticsPDF(1, analytics.RangeThisYear, "", "")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Financial_Report_2024-08-15.pdf", filename)
}

func TestCombinedDescriptionsComeFromCombiner(t *testing.T) {
	// Combiner behavior is covered in the ledger package; this guards the
	// service-level wiring for empty selections resolving to an error.
	svc, db := newTestService(t)
	seedLedger(t, db)

	session, err := svc.RunAnalytics(1, analytics.RangeThisYear, "", "")
	require.NoError(t, err)

	_, _, err = svc.CombinedStatementFromSession(1, session.Token, []int64{9999})
	assert.ErrorIs(t, err, ErrNoClientsGiven)
}
