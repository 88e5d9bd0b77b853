package models

// Supported ledger currencies. Each client keeps one ledger per currency.
const (
	CurrencyKES = "KES"
	CurrencyUSD = "USD"
)

// Transaction is one ledger entry in one currency ledger. Debit is money
// out (receivable increase), credit is money in (payment). By convention
// exactly one of the two is non-zero, but an all-zero entry is accepted and
// simply contributes nothing to balances.
type Transaction struct {
	ID            int64   `json:"id,omitempty"` // Database primary key
	ClientID      int64   `json:"client_id"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"` // YYYY-MM-DD, no time component
	Description   string  `json:"description"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Reference     string  `json:"reference,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Net returns the signed contribution of the entry to a running balance.
func (t Transaction) Net() float64 {
	return t.Credit - t.Debit
}

// TaggedTransaction is a transaction annotated with its owning client, as
// returned by date-range queries that join the clients table. The join always
// yields exactly one flat row shape; nothing downstream has to branch on
// whether the related client arrived as a record or a list.
type TaggedTransaction struct {
	Transaction
	ClientName string `json:"client_name"`
	ClientCode string `json:"client_code"`
}

// LedgerEntry is a transaction annotated with a running balance along a
// specific traversal order. Derived, never stored.
type LedgerEntry struct {
	Transaction
	Balance float64 `json:"balance"`
}

// Summary is the aggregate {paid, receivable, balance} over a transaction
// set. Paid sums credits, Receivable sums debits, Balance is paid minus
// receivable. Derived, never stored.
type Summary struct {
	Paid       float64 `json:"paid"`
	Receivable float64 `json:"receivable"`
	Balance    float64 `json:"balance"`
}

// Add accumulates another summary component-wise.
func (s *Summary) Add(other Summary) {
	s.Paid += other.Paid
	s.Receivable += other.Receivable
	s.Balance += other.Balance
}
