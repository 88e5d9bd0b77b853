package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/ledgerbook/backend/src/models"
)

// CreateTransaction inserts a ledger entry and stamps the owning client's
// last-transaction timestamp in the same database transaction.
func CreateTransaction(db *sql.DB, userID int64, t *models.Transaction) error {
	txDB, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			txDB.Rollback()
		}
	}()

	// The client must exist and belong to the user before anything is written.
	var clientID int64
	err = txDB.QueryRow(`SELECT id FROM clients WHERE id = ? AND user_id = ?`, t.ClientID, userID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	var res sql.Result
	res, err = txDB.Exec(`
		INSERT INTO transactions (user_id, client_id, currency, date, description, debit, credit, payment_method, reference, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, t.ClientID, t.Currency, t.Date, t.Description, t.Debit, t.Credit,
		t.PaymentMethod, t.Reference, t.Notes, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err = TouchLastTransaction(txDB, t.ClientID, now); err != nil {
		return err
	}

	if err = txDB.Commit(); err != nil {
		return err
	}
	t.ID = id
	return nil
}

// ListTransactions returns one client ledger in one currency. Descending
// date order is the interactive display order; ascending feeds statement
// rendering. Ties fall back to insertion order via the id column.
func ListTransactions(db *sql.DB, userID, clientID int64, currency string, descending bool) ([]models.Transaction, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	rows, err := db.Query(`
		SELECT id, client_id, currency, date, description, debit, credit, payment_method, reference, notes
		FROM transactions
		WHERE user_id = ? AND client_id = ? AND currency = ?
		ORDER BY date `+order+`, id `+order, userID, clientID, currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsInRange returns all of the user's transactions in one
// currency inside the inclusive [start, end] date window, each joined with
// its owning client's name and code. The join always produces one flat row
// per transaction, so callers never normalize related-record shapes.
func ListTransactionsInRange(db *sql.DB, userID int64, currency, start, end string) ([]models.TaggedTransaction, error) {
	rows, err := db.Query(`
		SELECT t.id, t.client_id, t.currency, t.date, t.description, t.debit, t.credit,
		       t.payment_method, t.reference, t.notes, c.name, c.code
		FROM transactions t
		JOIN clients c ON c.id = t.client_id
		WHERE t.user_id = ? AND t.currency = ? AND t.date >= ? AND t.date <= ?
		ORDER BY t.date ASC, t.id ASC`, userID, currency, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tagged := []models.TaggedTransaction{}
	for rows.Next() {
		var tt models.TaggedTransaction
		var method, reference, notes sql.NullString
		if err := rows.Scan(&tt.ID, &tt.ClientID, &tt.Currency, &tt.Date, &tt.Description,
			&tt.Debit, &tt.Credit, &method, &reference, &notes, &tt.ClientName, &tt.ClientCode); err != nil {
			return nil, err
		}
		tt.PaymentMethod = method.String
		tt.Reference = reference.String
		tt.Notes = notes.String
		tagged = append(tagged, tt)
	}
	return tagged, rows.Err()
}

// UpdateTransaction rewrites an entry's editable fields. A server-side
// policy can block the write and still return success with zero affected
// rows; that case surfaces as ErrNotFound so the caller reloads instead of
// trusting stale local state.
func UpdateTransaction(db *sql.DB, userID int64, t *models.Transaction) error {
	res, err := db.Exec(`
		UPDATE transactions
		SET date = ?, description = ?, debit = ?, credit = ?, payment_method = ?, reference = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		t.Date, t.Description, t.Debit, t.Credit, t.PaymentMethod, t.Reference, t.Notes,
		t.ID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction permanently removes one entry. No soft delete.
func DeleteTransaction(db *sql.DB, userID, transactionID int64) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, transactionID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var method, reference, notes sql.NullString
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Currency, &t.Date, &t.Description,
			&t.Debit, &t.Credit, &method, &reference, &notes); err != nil {
			return nil, err
		}
		t.PaymentMethod = method.String
		t.Reference = reference.String
		t.Notes = notes.String
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
