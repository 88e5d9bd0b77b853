package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/ledgerbook/backend/src/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 8, 15, 13, 45, 0, 0, time.UTC)
}

func testRenderer() *StatementRenderer {
	r := NewStatementRenderer("LedgerBook", "Confidential - For intended recipient only")
	r.Now = fixedClock
	return r
}

func statementFixture() StatementData {
	return StatementData{
		DisplayName: "Acme Ltd",
		DisplayCode: "AC01",
		Phone:       "+254700000000",
		ReportType:  ReportTypeFull,
		KES: []models.Transaction{
			{Date: "2024-01-05", Description: "payment", Credit: 1000},
			{Date: "2024-01-10", Description: "MG run to Nakuru", Debit: 400},
		},
		USD: []models.Transaction{
			{Date: "2024-02-01", Description: "consulting", Credit: 250},
		},
	}
}

func TestRenderStatementProducesPDF(t *testing.T) {
	artifact, filename, err := testRenderer().Render(statementFixture(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, artifact)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Statement_AC01_2024-08-15.pdf", filename)
}

func TestRenderStatementDeterministic(t *testing.T) {
	first, _, err := testRenderer().Render(statementFixture(), nil)
	require.NoError(t, err)
	second, _, err := testRenderer().Render(statementFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderStatementEmptyLedgers(t *testing.T) {
	data := StatementData{
		DisplayName: "Empty Client",
		DisplayCode: "EM01",
		ReportType:  ReportTypeFull,
	}
	artifact, _, err := testRenderer().Render(data, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
}

func TestRenderStatementReportTypes(t *testing.T) {
	for _, reportType := range []string{ReportTypeFull, ReportTypeSummary, ReportTypeKESOnly, ReportTypeUSDOnly} {
		data := statementFixture()
		data.ReportType = reportType
		artifact, _, err := testRenderer().Render(data, nil)
		require.NoError(t, err, reportType)
		assert.NotEmpty(t, artifact, reportType)
	}
}

func TestRenderStatementManyRowsPaginates(t *testing.T) {
	data := statementFixture()
	for i := 0; i < 200; i++ {
		data.KES = append(data.KES, models.Transaction{
			Date:        "2024-03-01",
			Description: "recurring delivery with a fairly long description that wraps across lines",
			Debit:       150,
		})
	}
	artifact, _, err := testRenderer().Render(data, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, artifact)
}

func TestRenderStatementDeliveryCallback(t *testing.T) {
	var gotName string
	var gotLen int
	deliver := func(artifact []byte, filename string) error {
		gotName = filename
		gotLen = len(artifact)
		return nil
	}

	artifact, filename, err := testRenderer().Render(statementFixture(), deliver)
	require.NoError(t, err)
	assert.Equal(t, filename, gotName)
	assert.Equal(t, len(artifact), gotLen)
}

func TestRenderStatementDeliveryFailure(t *testing.T) {
	wantErr := errors.New("share sheet dismissed")
	_, _, err := testRenderer().Render(statementFixture(), func([]byte, string) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestRenderFinancialReport(t *testing.T) {
	r := NewFinancialReportRenderer("LedgerBook")
	r.Now = fixedClock

	artifact, filename, err := r.Render(sampleReport(), nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(artifact[:4]))
	assert.Equal(t, "LedgerBook_Financial_Report_2024-08-15.pdf", filename)

	again, _, err := r.Render(sampleReport(), nil)
	require.NoError(t, err)
	assert.Equal(t, artifact, again)
}
