// Package ledgercsv parses the flat transaction CSV accepted by the import
// endpoint. Required columns, in order:
//
//	Date,Currency,Description,Debit,Credit
//
// with optional trailing Payment Method, Reference and Notes columns. Rows
// that fail to parse are skipped and counted, never fatal; only a missing or
// unrecognizable header aborts the whole file.
package ledgercsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/username/ledgerbook/backend/src/models"
)

// ErrInvalidFormat wraps structural failures (unreadable file, wrong header)
// so handlers can map the whole family to a 400.
var ErrInvalidFormat = errors.New("invalid transaction CSV")

const requiredColumns = 5

// dateLayouts are the accepted input layouts. Everything is normalized to
// YYYY-MM-DD on the way in.
var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// Parser converts an uploaded CSV into transactions ready for insertion.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the CSV and returns the valid rows in file order plus the
// number of rows skipped. ClientID is left unset; the caller owns routing.
func (p *Parser) Parse(file io.Reader) ([]models.Transaction, int, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read header: %v", ErrInvalidFormat, err)
	}
	if len(header) < requiredColumns || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, 0, fmt.Errorf("%w: header must start with Date,Currency,Description,Debit,Credit", ErrInvalidFormat)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read records: %v", ErrInvalidFormat, err)
	}

	var txs []models.Transaction
	skipped := 0
	for _, record := range records {
		if len(record) < requiredColumns {
			skipped++
			continue
		}

		date, err := parseDate(record[0])
		if err != nil {
			log.Printf("ledgercsv: skipping row with invalid date %q", record[0])
			skipped++
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(record[1]))
		if currency != models.CurrencyKES && currency != models.CurrencyUSD {
			log.Printf("ledgercsv: skipping row with unsupported currency %q", record[1])
			skipped++
			continue
		}

		debit, debitErr := parseAmount(record[3])
		credit, creditErr := parseAmount(record[4])
		if debitErr != nil || creditErr != nil {
			log.Printf("ledgercsv: skipping row with invalid amount (debit %q, credit %q)", record[3], record[4])
			skipped++
			continue
		}

		tx := models.Transaction{
			Currency:    currency,
			Date:        date,
			Description: strings.TrimSpace(record[2]),
			Debit:       debit,
			Credit:      credit,
		}
		if len(record) > 5 {
			tx.PaymentMethod = strings.TrimSpace(record[5])
		}
		if len(record) > 6 {
			tx.Reference = strings.TrimSpace(record[6])
		}
		if len(record) > 7 {
			tx.Notes = strings.TrimSpace(record[7])
		}
		txs = append(txs, tx)
	}

	return txs, skipped, nil
}

func parseDate(s string) (string, error) {
	cleaned := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// parseAmount accepts plain decimals with either a period or a comma as the
// decimal separator. Empty cells mean zero; negatives are rejected, the
// debit/credit split carries the direction.
func parseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\""))
	if cleaned == "" {
		return 0, nil
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}
