package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/ledgerbook/backend/src/models"
)

// ErrNoClients is returned when a combined statement is requested for an
// empty client selection.
var ErrNoClients = errors.New("no clients to combine")

// ClientLedger pairs a client with its per-currency transaction lists.
type ClientLedger struct {
	Client models.Client
	KES    []models.Transaction
	USD    []models.Transaction
}

// CombinedLedger is the merged view over several clients: one list per
// currency with rewritten descriptions, plus a synthetic display identity.
type CombinedLedger struct {
	DisplayName string
	DisplayCode string
	KES         []models.Transaction
	USD         []models.Transaction
	KESSummary  models.Summary
	USDSummary  models.Summary
}

// Combine merges the ledgers of several clients into one per-currency list
// sorted ascending by date. Each transaction description is rewritten to
// "{client name} - {description}", or just the client name when the original
// description is empty. Input slices are copied, never mutated.
func Combine(ledgers []ClientLedger) (*CombinedLedger, error) {
	if len(ledgers) == 0 {
		return nil, ErrNoClients
	}

	combined := &CombinedLedger{}
	names := make([]string, 0, len(ledgers))
	codes := make([]string, 0, len(ledgers))
	for _, l := range ledgers {
		names = append(names, l.Client.Name)
		codes = append(codes, l.Client.Code)
		combined.KES = append(combined.KES, prefixDescriptions(l.KES, l.Client.Name)...)
		combined.USD = append(combined.USD, prefixDescriptions(l.USD, l.Client.Name)...)
	}

	combined.DisplayName = joinNames(names)
	combined.DisplayCode = strings.Join(codes, " + ")

	var kesEntries, usdEntries []models.LedgerEntry
	kesEntries, combined.KESSummary = Aggregate(combined.KES)
	usdEntries, combined.USDSummary = Aggregate(combined.USD)
	combined.KES = stripBalances(kesEntries)
	combined.USD = stripBalances(usdEntries)

	return combined, nil
}

func prefixDescriptions(txs []models.Transaction, clientName string) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx
		if strings.TrimSpace(tx.Description) == "" {
			out[i].Description = clientName
		} else {
			out[i].Description = fmt.Sprintf("%s - %s", clientName, tx.Description)
		}
	}
	return out
}

// joinNames builds the combined display name: " & " join for up to two
// clients, otherwise the first two plus a "+N more" suffix.
func joinNames(names []string) string {
	if len(names) <= 2 {
		return strings.Join(names, " & ")
	}
	return fmt.Sprintf("%s & %s +%d more", names[0], names[1], len(names)-2)
}

func stripBalances(entries []models.LedgerEntry) []models.Transaction {
	txs := make([]models.Transaction, len(entries))
	for i, e := range entries {
		txs[i] = e.Transaction
	}
	return txs
}
