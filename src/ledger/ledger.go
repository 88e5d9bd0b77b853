// Package ledger holds the pure computation core: running balances,
// summaries and multi-client merging. Nothing here touches the database or
// the HTTP layer, so every function is safe to call from tests and from
// concurrent request handlers.
package ledger

import (
	"regexp"
	"sort"

	"github.com/username/ledgerbook/backend/src/models"
)

// Aggregate sorts transactions ascending by date (stable on ties, so
// insertion order decides) and annotates each with the running balance
// accumulated from zero, alongside the order-independent summary sums.
// Missing or zero amounts contribute zero; the function never fails.
func Aggregate(txs []models.Transaction) ([]models.LedgerEntry, models.Summary) {
	sorted := sortByDateAsc(txs)

	entries := make([]models.LedgerEntry, 0, len(sorted))
	var summary models.Summary
	var balance float64
	for _, tx := range sorted {
		balance += tx.Net()
		entries = append(entries, models.LedgerEntry{Transaction: tx, Balance: balance})
		summary.Paid += tx.Credit
		summary.Receivable += tx.Debit
	}
	summary.Balance = summary.Paid - summary.Receivable
	return entries, summary
}

// Summarize returns only the summary sums, skipping the sort.
func Summarize(txs []models.Transaction) models.Summary {
	var summary models.Summary
	for _, tx := range txs {
		summary.Paid += tx.Credit
		summary.Receivable += tx.Debit
	}
	summary.Balance = summary.Paid - summary.Receivable
	return summary
}

// DisplayBalances produces the interactive on-screen view: rows sorted
// descending by date (newest first) with the balance counted backwards from
// the newest entry. The newest row carries the full net balance and the
// column decreases as you scroll older. This is deliberately a separate
// traversal from Aggregate; the two directions must not be conflated.
func DisplayBalances(txs []models.Transaction) []models.LedgerEntry {
	asc := sortByDateAsc(txs)

	var remaining float64
	for _, tx := range asc {
		remaining += tx.Net()
	}

	// Walk newest to oldest, handing each row the balance through itself.
	entries := make([]models.LedgerEntry, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		entries = append(entries, models.LedgerEntry{Transaction: asc[i], Balance: remaining})
		remaining -= asc[i].Net()
	}
	return entries
}

// sortByDateAsc copies and stable-sorts by the YYYY-MM-DD date string.
// Lexicographic order on that format is chronological order; ties keep
// insertion order.
func sortByDateAsc(txs []models.Transaction) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// mileagePattern matches the standalone word "mg" regardless of case.
// "MG run" counts, "mileage" and "3mg" do not.
var mileagePattern = regexp.MustCompile(`(?i)\bmg\b`)

// MileageCount counts transactions whose description contains the whole
// word "mg". Statements report it as the mileage/trip count.
func MileageCount(txs []models.Transaction) int {
	count := 0
	for _, tx := range txs {
		if mileagePattern.MatchString(tx.Description) {
			count++
		}
	}
	return count
}
