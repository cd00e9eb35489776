package export

import (
	"bytes"
	"testing"
	"time"

	"batch-reconciliation-backend/internal/services/matching"
	"batch-reconciliation-backend/internal/services/reconciliation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult(t *testing.T) *reconciliation.Result {
	res, err := reconciliation.Reconcile(reconciliation.Input{
		LedgerRecords: []matching.LedgerRecord{
			{Account: "Main", BatchNumber: "1", Amount: decimal.RequireFromString("120.00"), BatchDescription: "Deposit 1", PostingDate: "03/01/2024"},
			{Account: "Main", BatchNumber: "2", Amount: decimal.RequireFromString("75.50"), BatchDescription: "Deposit 2", PostingDate: "03/02/2024"},
		},
		BankRows: []matching.Row{
			{"id": "ACC1", "amount": "120.00", "date": "2024-03-01", "memo": "DEP"},
			{"id": "ACC1", "amount": "80.00", "date": "2024-03-02", "memo": "ATM"},
		},
		Mapping:    matching.ColumnMapping{Identifier: "id", Amount: "amount", Date: "date", Description: "memo"},
		AccountMap: map[string]string{"Main": "ACC1"},
		Account:    "Main",
	})
	require.NoError(t, err)
	return res
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	require.NoError(t, WriteWorkbook(&buf, sampleResult(t), generated))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetMatches, SheetUnmatchedPCC, SheetUnmatchedBank}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated on:", "2024-03-05 10:30:00"}, summary[1])
	assert.Equal(t, []string{"PCC Total:", "195.50"}, summary[8])
	assert.Equal(t, []string{"Bank Total:", "200.00"}, summary[9])
	assert.Equal(t, []string{"Difference:", "-4.50"}, summary[10])
	assert.Equal(t, []string{"Status:", reconciliation.StatusDiscrepancy}, summary[11])

	matches, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[1][0])
	assert.Equal(t, "DEP", matches[1][5])

	unmatchedPCC, err := f.GetRows(SheetUnmatchedPCC)
	require.NoError(t, err)
	require.Len(t, unmatchedPCC, 2)
	assert.Equal(t, "2", unmatchedPCC[1][0])
	assert.Equal(t, "75.5", unmatchedPCC[1][3])

	unmatchedBank, err := f.GetRows(SheetUnmatchedBank)
	require.NoError(t, err)
	require.Len(t, unmatchedBank, 2)
	assert.Equal(t, "ATM", unmatchedBank[1][2])
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 15, 0, time.UTC)
	assert.Equal(t, "Bank_Reconciliation_Main_Operating__1__2024-03-05T10-30-15.xlsx", FileName("Main Operating (1)", now))
}
