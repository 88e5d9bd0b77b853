package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/ledgerbook/backend/src/models"
)

func tagged(code, name, date string, debit, credit float64) models.TaggedTransaction {
	return models.TaggedTransaction{
		Transaction: models.Transaction{Date: date, Debit: debit, Credit: credit},
		ClientName:  name,
		ClientCode:  code,
	}
}

func TestResolveRangePresets(t *testing.T) {
	now := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		preset    string
		wantStart string
		wantEnd   string
	}{
		{RangeCurrentMonth, "2024-08-01", "2024-08-15"},
		{RangeLast3Months, "2024-05-15", "2024-08-15"},
		{RangeLast6Months, "2024-02-15", "2024-08-15"},
		{RangeThisYear, "2024-01-01", "2024-08-15"},
	}
	for _, tc := range cases {
		rng, err := ResolveRange(tc.preset, "", "", now)
		require.NoError(t, err, tc.preset)
		assert.Equal(t, tc.wantStart, rng.Start, tc.preset)
		assert.Equal(t, tc.wantEnd, rng.End, tc.preset)
	}
}

func TestResolveRangeCustom(t *testing.T) {
	now := time.Now()

	rng, err := ResolveRange(RangeCustom, "2024-01-01", "2024-03-31", now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2024-01-01", End: "2024-03-31"}, rng)

	_, err = ResolveRange(RangeCustom, "2024-01-01", "", now)
	assert.ErrorIs(t, err, ErrIncompleteRange)

	_, err = ResolveRange(RangeCustom, "", "2024-03-31", now)
	assert.ErrorIs(t, err, ErrIncompleteRange)

	_, err = ResolveRange(RangeCustom, "2024-03-31", "2024-01-01", now)
	assert.Error(t, err)

	_, err = ResolveRange("fortnight", "", "", now)
	assert.Error(t, err)
}

func TestBucketizeRollupsAndCounters(t *testing.T) {
	rng := DateRange{Start: "2024-01-01", End: "2024-12-31"}
	clients := []models.Client{
		{Name: "Acme", Code: "AC", Status: models.ClientStatusActive},
		{Name: "Beta", Code: "BT", Status: models.ClientStatusActive},
		{Name: "Idle", Code: "ID", Status: models.ClientStatusInactive},
	}
	kes := []models.TaggedTransaction{
		tagged("AC", "Acme", "2024-01-05", 0, 10000),
		tagged("AC", "Acme", "2024-02-10", 4000, 0),
		tagged("BT", "Beta", "2024-02-20", 0, 2000),
	}
	usd := []models.TaggedTransaction{
		tagged("BT", "Beta", "2024-01-15", 0, 500),
	}

	report := Bucketize(rng, kes, usd, clients, 130)

	assert.Equal(t, 3, report.Stats.TotalClients)
	assert.Equal(t, 2, report.Stats.ActiveClients)
	assert.Equal(t, 1, report.Stats.InactiveClients)
	assert.Equal(t, 4, report.Stats.TotalTransactions)
	assert.Equal(t, 8000.0, report.Stats.TotalBalanceKES)
	assert.Equal(t, 500.0, report.Stats.TotalBalanceUSD)

	// Beta composite: 2000 + 500*130 = 67000 beats Acme's 6000.
	require.Len(t, report.TopClients, 2)
	assert.Equal(t, "BT", report.TopClients[0].ClientCode)
	assert.Equal(t, "AC", report.TopClients[1].ClientCode)
	assert.Equal(t, 2, report.TopClients[0].TransactionCount)

	require.Len(t, report.Monthly, 2)
	jan := report.Monthly[0]
	assert.Equal(t, "2024-01", jan.Month)
	assert.Equal(t, 1, jan.KESCount)
	assert.Equal(t, 10000.0, jan.KESNet)
	assert.Equal(t, 1, jan.USDCount)
	assert.Equal(t, 500.0, jan.USDNet)

	feb := report.Monthly[1]
	assert.Equal(t, "2024-02", feb.Month)
	assert.Equal(t, 2, feb.KESCount)
	assert.Equal(t, -2000.0, feb.KESNet)
	assert.Equal(t, 0, feb.USDCount)
}

func TestBucketizeFiltersOutsideRange(t *testing.T) {
	rng := DateRange{Start: "2024-02-01", End: "2024-02-29"}
	kes := []models.TaggedTransaction{
		tagged("AC", "Acme", "2024-01-31", 0, 100),
		tagged("AC", "Acme", "2024-02-01", 0, 200),
		tagged("AC", "Acme", "2024-02-29", 50, 0),
		tagged("AC", "Acme", "2024-03-01", 0, 400),
	}

	report := Bucketize(rng, kes, nil, nil, 130)

	assert.Equal(t, 2, report.Stats.TotalTransactions)
	assert.Equal(t, 150.0, report.Stats.TotalBalanceKES)
	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "2024-02", report.Monthly[0].Month)
}

func TestBucketizeTopTenCutoff(t *testing.T) {
	rng := DateRange{Start: "2024-01-01", End: "2024-12-31"}
	var kes []models.TaggedTransaction
	for i := 0; i < 12; i++ {
		code := fmt.Sprintf("C%02d", i)
		kes = append(kes, tagged(code, "Client "+code, "2024-06-01", 0, float64(1000*(i+1))))
	}

	report := Bucketize(rng, kes, nil, nil, 130)

	require.Len(t, report.TopClients, 10)
	assert.Equal(t, "C11", report.TopClients[0].ClientCode)
	assert.Equal(t, "C02", report.TopClients[9].ClientCode)
}

func TestBucketizeEmpty(t *testing.T) {
	report := Bucketize(DateRange{Start: "2024-01-01", End: "2024-01-31"}, nil, nil, nil, 130)
	assert.Equal(t, 0, report.Stats.TotalTransactions)
	assert.Empty(t, report.TopClients)
	assert.Empty(t, report.Monthly)
}
