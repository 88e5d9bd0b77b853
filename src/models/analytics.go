package models

// ClientStats holds the global counters of an analytics run.
type ClientStats struct {
	TotalClients      int     `json:"total_clients"`
	ActiveClients     int     `json:"active_clients"`
	InactiveClients   int     `json:"inactive_clients"`
	TotalTransactions int     `json:"total_transactions"`
	TotalBalanceKES   float64 `json:"total_balance_kes"`
	TotalBalanceUSD   float64 `json:"total_balance_usd"`
}

// ClientRollup is the per-client aggregate over a reporting date range.
type ClientRollup struct {
	ClientName       string  `json:"client_name"`
	ClientCode       string  `json:"client_code"`
	BalanceKES       float64 `json:"balance_kes"`
	BalanceUSD       float64 `json:"balance_usd"`
	TransactionCount int     `json:"transaction_count"`
}

// MonthlyTrend is the per-calendar-month aggregate over a reporting date
// range. Month is YYYY-MM.
type MonthlyTrend struct {
	Month    string  `json:"month"`
	KESCount int     `json:"kes_count"`
	KESNet   float64 `json:"kes_net"`
	USDCount int     `json:"usd_count"`
	USDNet   float64 `json:"usd_net"`
}

// AnalyticsReport is the full rollup produced by one analytics run. The same
// structure feeds the JSON API, the PDF exporter and the CSV exporter.
type AnalyticsReport struct {
	StartDate  string         `json:"start_date"` // YYYY-MM-DD inclusive
	EndDate    string         `json:"end_date"`   // YYYY-MM-DD inclusive
	Stats      ClientStats    `json:"stats"`
	TopClients []ClientRollup `json:"top_clients"`
	Monthly    []MonthlyTrend `json:"monthly"`
}
