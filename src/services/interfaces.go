package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/ledgerbook/backend/src/models"
	"github.com/username/ledgerbook/backend/src/reports"
)

// Cache windows for analytics sessions. A session only needs to live long
// enough for the user to click an export button after loading the page.
const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Common service errors.
var (
	ErrSessionExpired = errors.New("analytics session expired or not found")
	ErrNoClientsGiven = errors.New("no client identifiers supplied")
)

// ClientLedgerView is the interactive per-client view: both currency
// ledgers in display order (newest first, balance counting backwards from
// the newest entry) plus their summaries.
type ClientLedgerView struct {
	Client     models.Client        `json:"client"`
	KES        []models.LedgerEntry `json:"kes"`
	USD        []models.LedgerEntry `json:"usd"`
	KESSummary models.Summary       `json:"kes_summary"`
	USDSummary models.Summary       `json:"usd_summary"`
}

// AnalyticsSession pairs one analytics run with a short-lived token. The
// token lets a later combined-export call reuse the exact transaction
// snapshot the user was looking at, passed explicitly instead of through
// ambient shared state.
type AnalyticsSession struct {
	Token  string                  `json:"session_token"`
	Report *models.AnalyticsReport `json:"report"`
}

// ImportResult summarizes one CSV import: rows inserted and rows the parser
// skipped as unusable.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// LedgerService is the orchestration layer between the HTTP handlers and
// the stores, aggregators and renderers.
type LedgerService interface {
	GetClientLedger(userID, clientID int64) (*ClientLedgerView, error)

	// ImportTransactions parses a transaction CSV and inserts its rows into
	// the client's ledgers.
	ImportTransactions(userID, clientID int64, file io.Reader) (*ImportResult, error)

	BuildStatement(userID, clientID int64, reportType string, deliver reports.Delivery) ([]byte, string, error)
	BuildCombinedStatement(userID int64, clientIDs []int64, deliver reports.Delivery) ([]byte, string, error)

	RunAnalytics(userID int64, preset, customStart, customEnd string) (*AnalyticsSession, error)
	ExportAnalyticsPDF(userID int64, preset, customStart, customEnd string) ([]byte, string, error)
	ExportAnalyticsCSV(userID int64, preset, customStart, customEnd string) ([]byte, string, error)

	// CombinedStatementFromSession renders a full combined statement for the
	// selected clients out of a cached analytics snapshot.
	CombinedStatementFromSession(userID int64, token string, clientIDs []int64) ([]byte, string, error)
}
