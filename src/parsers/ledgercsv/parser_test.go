package ledgercsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidRows(t *testing.T) {
	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit",
		"2024-01-05,KES,payment received,,1000",
		"2024-01-10,kes,MG run,400,0",
		"2024-02-01,USD,consulting,,250.50",
	}, "\n")

	txs, skipped, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, txs, 3)

	assert.Equal(t, "2024-01-05", txs[0].Date)
	assert.Equal(t, "KES", txs[0].Currency)
	assert.Equal(t, 1000.0, txs[0].Credit)
	assert.Equal(t, 0.0, txs[0].Debit)

	// Currency is upper-cased on the way in.
	assert.Equal(t, "KES", txs[1].Currency)
	assert.Equal(t, 400.0, txs[1].Debit)

	assert.Equal(t, "USD", txs[2].Currency)
	assert.Equal(t, 250.5, txs[2].Credit)
}

func TestParseOptionalColumns(t *testing.T) {
	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit,Payment Method,Reference,Notes",
		"2024-01-05,KES,supplies,300,,mpesa,INV-042,urgent",
	}, "\n")

	txs, _, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "mpesa", txs[0].PaymentMethod)
	assert.Equal(t, "INV-042", txs[0].Reference)
	assert.Equal(t, "urgent", txs[0].Notes)
}

func TestParseAlternateDateLayouts(t *testing.T) {
	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit",
		"05-01-2024,KES,dashed,,10",
		"05/01/2024,KES,slashed,,20",
	}, "\n")

	txs, skipped, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, txs, 2)
	assert.Equal(t, "2024-01-05", txs[0].Date)
	assert.Equal(t, "2024-01-05", txs[1].Date)
}

func TestParseCommaDecimalSeparator(t *testing.T) {
	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit",
		`2024-01-05,KES,fuel,"150,75",`,
	}, "\n")

	txs, _, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 150.75, txs[0].Debit)
}

func TestParseSkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"Date,Currency,Description,Debit,Credit",
		"not-a-date,KES,bad date,,100",
		"2024-01-05,EUR,bad currency,,100",
		"2024-01-05,KES,bad amount,abc,",
		"2024-01-05,KES,negative,-50,",
		"2024-01-06,KES,good,,100",
	}, "\n")

	txs, skipped, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, txs, 1)
	assert.Equal(t, "good", txs[0].Description)
}

func TestParseWrongHeader(t *testing.T) {
	_, _, err := NewParser().Parse(strings.NewReader("Amount,Stuff\n1,2\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseEmptyFile(t *testing.T) {
	_, _, err := NewParser().Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseHeaderOnly(t *testing.T) {
	txs, skipped, err := NewParser().Parse(strings.NewReader("Date,Currency,Description,Debit,Credit\n"))
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, 0, skipped)
}
