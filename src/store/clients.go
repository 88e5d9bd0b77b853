package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/username/ledgerbook/backend/src/models"
)

// CreateClient inserts a client for the user and fills in its new ID.
func CreateClient(db *sql.DB, c *models.Client) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}

	res, err := db.Exec(`
		INSERT INTO clients (user_id, name, code, phone, email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Code, c.Phone, c.Email, c.Status, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetClient fetches one client owned by the user.
func GetClient(db *sql.DB, userID, clientID int64) (*models.Client, error) {
	row := db.QueryRow(`
		SELECT id, user_id, name, code, phone, email, status, created_at, last_transaction_at
		FROM clients
		WHERE id = ? AND user_id = ?`, clientID, userID)
	return scanClient(row)
}

// ListClients returns every client owned by the user, newest first.
func ListClients(db *sql.DB, userID int64) ([]models.Client, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, code, phone, email, status, created_at, last_transaction_at
		FROM clients
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// ListClientsByIDs returns the subset of the user's clients matching the
// given IDs, in stored order. IDs that do not belong to the user are simply
// absent from the result.
func ListClientsByIDs(db *sql.DB, userID int64, ids []int64) ([]models.Client, error) {
	if len(ids) == 0 {
		return []models.Client{}, nil
	}
	query := `
		SELECT id, user_id, name, code, phone, email, status, created_at, last_transaction_at
		FROM clients
		WHERE user_id = ? AND id IN (?` + strings.Repeat(",?", len(ids)-1) + `)
		ORDER BY id ASC`
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// UpdateClient rewrites the editable fields of a client. Zero affected rows
// means the row is gone or not the user's; either way the caller must see a
// failure, not a no-op success.
func UpdateClient(db *sql.DB, c *models.Client) error {
	res, err := db.Exec(`
		UPDATE clients
		SET name = ?, code = ?, phone = ?, email = ?, status = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Code, c.Phone, c.Email, c.Status, c.ID, c.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
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

// DeleteClient removes a client and, through the foreign key cascade, its
// transactions. Deletion is permanent.
func DeleteClient(db *sql.DB, userID, clientID int64) error {
	res, err := db.Exec(`DELETE FROM clients WHERE id = ? AND user_id = ?`, clientID, userID)
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

// TouchLastTransaction stamps the client's last-transaction timestamp.
// Ownership is the caller's concern; CreateTransaction runs this inside its
// transaction after verifying the client belongs to the user.
func TouchLastTransaction(db execer, clientID int64, at time.Time) error {
	_, err := db.Exec(`UPDATE clients SET last_transaction_at = ? WHERE id = ?`, at.UTC(), clientID)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var phone, email sql.NullString
	var lastTx sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Code, &phone, &email, &c.Status, &c.CreatedAt, &lastTx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Phone = phone.String
	c.Email = email.String
	c.LastTransactionAt = models.NullTime(lastTx)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
