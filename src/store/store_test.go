package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/ledgerbook/backend/src/models"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
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
	return db
}

func seedClient(t *testing.T, db *sql.DB, userID int64, name, code string) *models.Client {
	t.Helper()
	c := &models.Client{UserID: userID, Name: name, Code: code}
	require.NoError(t, CreateClient(db, c))
	return c
}

func TestClientCRUD(t *testing.T) {
	db := openTestDB(t)

	c := seedClient(t, db, 1, "Acme Ltd", "AC01")
	require.NotZero(t, c.ID)
	assert.Equal(t, models.ClientStatusActive, c.Status)

	got, err := GetClient(db, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)
	assert.False(t, got.LastTransactionAt.Valid)

	got.Phone = "+254700000000"
	got.Status = models.ClientStatusInactive
	require.NoError(t, UpdateClient(db, got))

	updated, err := GetClient(db, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "+254700000000", updated.Phone)
	assert.Equal(t, models.ClientStatusInactive, updated.Status)

	require.NoError(t, DeleteClient(db, 1, c.ID))
	_, err = GetClient(db, 1, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientCodeUniquePerUser(t *testing.T) {
	db := openTestDB(t)
	seedClient(t, db, 1, "Acme", "AC01")

	err := CreateClient(db, &models.Client{UserID: 1, Name: "Other", Code: "AC01"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestClientScopedToUser(t *testing.T) {
	db := openTestDB(t)
	c := seedClient(t, db, 1, "Acme", "AC01")

	_, err := GetClient(db, 2, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = DeleteClient(db, 2, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateClientZeroRowsIsFailure(t *testing.T) {
	db := openTestDB(t)

	err := UpdateClient(db, &models.Client{ID: 999, UserID: 1, Name: "Ghost", Code: "GH", Status: "active"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionLifecycle(t *testing.T) {
	db := openTestDB(t)
	c := seedClient(t, db, 1, "Acme", "AC01")

	tx := &models.Transaction{
		ClientID:    c.ID,
		Currency:    models.CurrencyKES,
		Date:        "2024-01-05",
		Description: "payment",
		Credit:      1000,
	}
	require.NoError(t, CreateTransaction(db, 1, tx))
	require.NotZero(t, tx.ID)

	// Insert stamps the client's last-transaction timestamp.
	after, err := GetClient(db, 1, c.ID)
	require.NoError(t, err)
	assert.True(t, after.LastTransactionAt.Valid)

	tx.Description = "payment (edited)"
	tx.Credit = 1200
	require.NoError(t, UpdateTransaction(db, 1, tx))

	listed, err := ListTransactions(db, 1, c.ID, models.CurrencyKES, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "payment (edited)", listed[0].Description)
	assert.Equal(t, 1200.0, listed[0].Credit)

	require.NoError(t, DeleteTransaction(db, 1, tx.ID))
	err = DeleteTransaction(db, 1, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTouchLastTransaction(t *testing.T) {
	db := openTestDB(t)
	c := seedClient(t, db, 1, "Acme", "AC01")

	stamp := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, TouchLastTransaction(db, c.ID, stamp))

	got, err := GetClient(db, 1, c.ID)
	require.NoError(t, err)
	require.True(t, got.LastTransactionAt.Valid)
	assert.Equal(t, stamp, got.LastTransactionAt.Time.UTC())
}

func TestCreateTransactionUnknownClient(t *testing.T) {
	db := openTestDB(t)

	err := CreateTransaction(db, 1, &models.Transaction{ClientID: 42, Currency: "KES", Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransactionZeroRowsIsFailure(t *testing.T) {
	db := openTestDB(t)

	err := UpdateTransaction(db, 1, &models.Transaction{ID: 77, Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTransactionsOrdering(t *testing.T) {
	db := openTestDB(t)
	c := seedClient(t, db, 1, "Acme", "AC01")

	dates := []string{"2024-02-01", "2024-01-01", "2024-02-01"}
	for i, d := range dates {
		require.NoError(t, CreateTransaction(db, 1, &models.Transaction{
			ClientID: c.ID, Currency: models.CurrencyKES, Date: d, Credit: float64(i + 1),
		}))
	}

	asc, err := ListTransactions(db, 1, c.ID, models.CurrencyKES, false)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "2024-01-01", asc[0].Date)
	// Same-date ties keep insertion order.
	assert.Equal(t, 1.0, asc[1].Credit)
	assert.Equal(t, 3.0, asc[2].Credit)

	desc, err := ListTransactions(db, 1, c.ID, models.CurrencyKES, true)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", desc[2].Date)
}

func TestListTransactionsInRange(t *testing.T) {
	db := openTestDB(t)
	a := seedClient(t, db, 1, "Acme", "AC01")
	b := seedClient(t, db, 1, "Beta", "BT02")

	entries := []struct {
		client *models.Client
		date   string
		credit float64
	}{
		{a, "2024-01-15", 100},
		{a, "2024-03-15", 200},
		{b, "2024-02-10", 300},
	}
	for _, e := range entries {
		require.NoError(t, CreateTransaction(db, 1, &models.Transaction{
			ClientID: e.client.ID, Currency: models.CurrencyKES, Date: e.date, Credit: e.credit,
		}))
	}

	tagged, err := ListTransactionsInRange(db, 1, models.CurrencyKES, "2024-01-01", "2024-02-29")
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, "Acme", tagged[0].ClientName)
	assert.Equal(t, "BT02", tagged[1].ClientCode)
}
