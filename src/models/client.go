package models

import "time"

// Client statuses as stored in the clients table.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusArchived = "archived"
)

// Client is a counterparty with two independent currency ledgers (KES and
// USD). Ledgers never net against each other.
type Client struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"-"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	LastTransactionAt NullTime  `json:"last_transaction_at"`
}
