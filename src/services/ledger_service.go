package services

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerbook/backend/src/analytics"
	"github.com/username/ledgerbook/backend/src/ledger"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/models"
	"github.com/username/ledgerbook/backend/src/parsers/ledgercsv"
	"github.com/username/ledgerbook/backend/src/reports"
	"github.com/username/ledgerbook/backend/src/security/validation"
	"github.com/username/ledgerbook/backend/src/store"
)

type ledgerService struct {
	db           *sql.DB
	statements   *reports.StatementRenderer
	financial    *reports.FinancialReportRenderer
	brand        string
	kesPerUSD    float64
	sessionCache *cache.Cache
	now          func() time.Time
}

// cachedSession is the snapshot stashed between an analytics run and a
// combined export. It is keyed by token and bound to the requesting user.
type cachedSession struct {
	UserID int64
	Report *models.AnalyticsReport
	KES    []models.TaggedTransaction
	USD    []models.TaggedTransaction
}

// NewLedgerService wires the stores, aggregators and renderers together.
func NewLedgerService(db *sql.DB, brand, confidentialityNote string, kesPerUSD float64, sessionCache *cache.Cache) LedgerService {
	return &ledgerService{
		db:           db,
		statements:   reports.NewStatementRenderer(brand, confidentialityNote),
		financial:    reports.NewFinancialReportRenderer(brand),
		brand:        brand,
		kesPerUSD:    kesPerUSD,
		sessionCache: sessionCache,
		now:          time.Now,
	}
}

// GetClientLedger loads the client record and both currency ledgers with
// three concurrent fetches, then computes the display-order views. Each
// load is an immutable snapshot; edits trigger a reload rather than a
// partial merge.
func (s *ledgerService) GetClientLedger(userID, clientID int64) (*ClientLedgerView, error) {
	var (
		wg             sync.WaitGroup
		client         *models.Client
		kesTxs, usdTxs []models.Transaction
		clientErr      error
		kesErr, usdErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		client, clientErr = store.GetClient(s.db, userID, clientID)
	}()
	go func() {
		defer wg.Done()
		kesTxs, kesErr = store.ListTransactions(s.db, userID, clientID, models.CurrencyKES, true)
	}()
	go func() {
		defer wg.Done()
		usdTxs, usdErr = store.ListTransactions(s.db, userID, clientID, models.CurrencyUSD, true)
	}()
	wg.Wait()

	for _, err := range []error{clientErr, kesErr, usdErr} {
		if err != nil {
			return nil, err
		}
	}

	return &ClientLedgerView{
		Client:     *client,
		KES:        ledger.DisplayBalances(kesTxs),
		USD:        ledger.DisplayBalances(usdTxs),
		KESSummary: ledger.Summarize(kesTxs),
		USDSummary: ledger.Summarize(usdTxs),
	}, nil
}

// ImportTransactions parses an uploaded CSV and inserts its rows into the
// client's ledgers. The client must exist and belong to the user before any
// row is written; after that a failing insert aborts the import mid-way, so
// the result reports how far it got.
func (s *ledgerService) ImportTransactions(userID, clientID int64, file io.Reader) (*ImportResult, error) {
	if _, err := store.GetClient(s.db, userID, clientID); err != nil {
		return nil, err
	}

	txs, skipped, err := ledgercsv.NewParser().Parse(file)
	if err != nil {
		return nil, err
	}

	imported := 0
	for i := range txs {
		txs[i].ClientID = clientID
		txs[i].Description = strings.TrimSpace(validation.SanitizeText(txs[i].Description))
		txs[i].Notes = strings.TrimSpace(validation.SanitizeText(txs[i].Notes))
		if err := store.CreateTransaction(s.db, userID, &txs[i]); err != nil {
			return nil, fmt.Errorf("import aborted after %d rows: %w", imported, err)
		}
		imported++
	}

	logger.L.Info("Transaction import complete", "userID", userID, "clientID", clientID,
		"imported", imported, "skipped", skipped)
	return &ImportResult{Imported: imported, Skipped: skipped}, nil
}

func (s *ledgerService) BuildStatement(userID, clientID int64, reportType string, deliver reports.Delivery) ([]byte, string, error) {
	client, err := store.GetClient(s.db, userID, clientID)
	if err != nil {
		return nil, "", err
	}
	kesTxs, err := store.ListTransactions(s.db, userID, clientID, models.CurrencyKES, false)
	if err != nil {
		return nil, "", err
	}
	usdTxs, err := store.ListTransactions(s.db, userID, clientID, models.CurrencyUSD, false)
	if err != nil {
		return nil, "", err
	}

	data := reports.StatementData{
		DisplayName: client.Name,
		DisplayCode: client.Code,
		Phone:       client.Phone,
		KES:         kesTxs,
		USD:         usdTxs,
		ReportType:  reportType,
	}
	return s.statements.Render(data, deliver)
}

func (s *ledgerService) BuildCombinedStatement(userID int64, clientIDs []int64, deliver reports.Delivery) ([]byte, string, error) {
	if len(clientIDs) == 0 {
		return nil, "", ErrNoClientsGiven
	}
	clients, err := store.ListClientsByIDs(s.db, userID, clientIDs)
	if err != nil {
		return nil, "", err
	}

	ledgers := make([]ledger.ClientLedger, 0, len(clients))
	for _, c := range clients {
		kesTxs, err := store.ListTransactions(s.db, userID, c.ID, models.CurrencyKES, false)
		if err != nil {
			return nil, "", err
		}
		usdTxs, err := store.ListTransactions(s.db, userID, c.ID, models.CurrencyUSD, false)
		if err != nil {
			return nil, "", err
		}
		ledgers = append(ledgers, ledger.ClientLedger{Client: c, KES: kesTxs, USD: usdTxs})
	}

	return s.renderCombined(ledgers, deliver)
}

func (s *ledgerService) renderCombined(ledgers []ledger.ClientLedger, deliver reports.Delivery) ([]byte, string, error) {
	combined, err := ledger.Combine(ledgers)
	if err != nil {
		return nil, "", err
	}

	data := reports.StatementData{
		DisplayName: combined.DisplayName,
		DisplayCode: combined.DisplayCode,
		KES:         combined.KES,
		USD:         combined.USD,
		ReportType:  reports.ReportTypeFull,
	}
	return s.statements.Render(data, deliver)
}

// runAnalytics performs the fetch-and-bucketize pass shared by the JSON
// endpoint and both exporters.
func (s *ledgerService) runAnalytics(userID int64, preset, customStart, customEnd string) (*cachedSession, error) {
	rng, err := analytics.ResolveRange(preset, customStart, customEnd, s.now())
	if err != nil {
		return nil, err
	}

	kesTxs, err := store.ListTransactionsInRange(s.db, userID, models.CurrencyKES, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	usdTxs, err := store.ListTransactionsInRange(s.db, userID, models.CurrencyUSD, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	clients, err := store.ListClients(s.db, userID)
	if err != nil {
		return nil, err
	}

	report := analytics.Bucketize(rng, kesTxs, usdTxs, clients, s.kesPerUSD)
	return &cachedSession{UserID: userID, Report: report, KES: kesTxs, USD: usdTxs}, nil
}

func (s *ledgerService) RunAnalytics(userID int64, preset, customStart, customEnd string) (*AnalyticsSession, error) {
	session, err := s.runAnalytics(userID, preset, customStart, customEnd)
	if err != nil {
		return nil, err
	}

	token := uuid.New().String()
	s.sessionCache.Set(token, session, cache.DefaultExpiration)
	logger.L.Debug("Analytics session cached", "userID", userID, "token", token,
		"transactions", session.Report.Stats.TotalTransactions)

	return &AnalyticsSession{Token: token, Report: session.Report}, nil
}

func (s *ledgerService) ExportAnalyticsPDF(userID int64, preset, customStart, customEnd string) ([]byte, string, error) {
	session, err := s.runAnalytics(userID, preset, customStart, customEnd)
	if err != nil {
		return nil, "", err
	}
	return s.financial.Render(session.Report, nil)
}

func (s *ledgerService) ExportAnalyticsCSV(userID int64, preset, customStart, customEnd string) ([]byte, string, error) {
	session, err := s.runAnalytics(userID, preset, customStart, customEnd)
	if err != nil {
		return nil, "", err
	}
	generatedAt := s.now()
	return reports.ExportCSV(session.Report, s.brand, generatedAt),
		reports.CSVReportFileName(s.brand, generatedAt), nil
}

// CombinedStatementFromSession reuses the cached analytics snapshot so the
// combined statement covers exactly the transactions the user was shown,
// restricted to the selected clients, always as a full statement.
func (s *ledgerService) CombinedStatementFromSession(userID int64, token string, clientIDs []int64) ([]byte, string, error) {
	if len(clientIDs) == 0 {
		return nil, "", ErrNoClientsGiven
	}

	raw, found := s.sessionCache.Get(token)
	if !found {
		return nil, "", ErrSessionExpired
	}
	session, ok := raw.(*cachedSession)
	if !ok || session.UserID != userID {
		return nil, "", ErrSessionExpired
	}

	clients, err := store.ListClientsByIDs(s.db, userID, clientIDs)
	if err != nil {
		return nil, "", err
	}

	ledgers := make([]ledger.ClientLedger, 0, len(clients))
	for _, c := range clients {
		ledgers = append(ledgers, ledger.ClientLedger{
			Client: c,
			KES:    selectByClient(session.KES, c.ID),
			USD:    selectByClient(session.USD, c.ID),
		})
	}
	if len(ledgers) == 0 {
		return nil, "", fmt.Errorf("%w: none of the selected clients belong to this user", ErrNoClientsGiven)
	}

	return s.renderCombined(ledgers, nil)
}

func selectByClient(tagged []models.TaggedTransaction, clientID int64) []models.Transaction {
	var txs []models.Transaction
	for _, tt := range tagged {
		if tt.ClientID == clientID {
			txs = append(txs, tt.Transaction)
		}
	}
	return txs
}
