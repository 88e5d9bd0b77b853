// Package analytics rolls a date-filtered transaction set up into the
// client ranking, monthly trend and global counter views consumed by the
// report exporters.
package analytics

import (
	"sort"

	"github.com/username/ledgerbook/backend/src/models"
)

const topClientLimit = 10

// Bucketize aggregates the KES and USD transactions of one reporting window
// into per-client rollups, a top-10 ranking, per-month trend buckets and
// global counters. kesPerUSD weights USD balances for the ranking composite;
// the composite is a sort key only and never appears in any output.
func Bucketize(rng DateRange, kesTxs, usdTxs []models.TaggedTransaction, clients []models.Client, kesPerUSD float64) *models.AnalyticsReport {
	report := &models.AnalyticsReport{
		StartDate:  rng.Start,
		EndDate:    rng.End,
		TopClients: []models.ClientRollup{},
		Monthly:    []models.MonthlyTrend{},
	}

	report.Stats.TotalClients = len(clients)
	for _, c := range clients {
		switch c.Status {
		case models.ClientStatusActive:
			report.Stats.ActiveClients++
		default:
			report.Stats.InactiveClients++
		}
	}

	rollups := make(map[string]*models.ClientRollup)
	months := make(map[string]*models.MonthlyTrend)

	bucket := func(txs []models.TaggedTransaction, currency string) {
		for _, tx := range txs {
			if !rng.Contains(tx.Date) {
				continue
			}
			report.Stats.TotalTransactions++

			r, ok := rollups[tx.ClientCode]
			if !ok {
				r = &models.ClientRollup{ClientName: tx.ClientName, ClientCode: tx.ClientCode}
				rollups[tx.ClientCode] = r
			}
			r.TransactionCount++

			m, ok := months[monthKey(tx.Date)]
			if !ok {
				m = &models.MonthlyTrend{Month: monthKey(tx.Date)}
				months[monthKey(tx.Date)] = m
			}

			net := tx.Net()
			switch currency {
			case models.CurrencyUSD:
				r.BalanceUSD += net
				report.Stats.TotalBalanceUSD += net
				m.USDCount++
				m.USDNet += net
			default:
				r.BalanceKES += net
				report.Stats.TotalBalanceKES += net
				m.KESCount++
				m.KESNet += net
			}
		}
	}
	bucket(kesTxs, models.CurrencyKES)
	bucket(usdTxs, models.CurrencyUSD)

	report.TopClients = rankClients(rollups, kesPerUSD)
	report.Monthly = sortedMonths(months)
	return report
}

// rankClients orders rollups descending by the currency-weighted composite.
// The sort is stable over code order so equal composites keep a fixed order.
func rankClients(rollups map[string]*models.ClientRollup, kesPerUSD float64) []models.ClientRollup {
	ranked := make([]models.ClientRollup, 0, len(rollups))
	for _, r := range rollups {
		ranked = append(ranked, *r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ci := composite(ranked[i], kesPerUSD)
		cj := composite(ranked[j], kesPerUSD)
		if ci != cj {
			return ci > cj
		}
		return ranked[i].ClientCode < ranked[j].ClientCode
	})
	if len(ranked) > topClientLimit {
		ranked = ranked[:topClientLimit]
	}
	return ranked
}

func composite(r models.ClientRollup, kesPerUSD float64) float64 {
	return r.BalanceKES + r.BalanceUSD*kesPerUSD
}

func sortedMonths(months map[string]*models.MonthlyTrend) []models.MonthlyTrend {
	out := make([]models.MonthlyTrend, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
