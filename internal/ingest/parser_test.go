package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"batch-reconciliation-backend/internal/services/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const ledgerCSV = "\ufeffBank Account Description,Batch Number,Amount,Batch Description,Posting Date\n" +
	"Main,1,120.00,Deposit 1,03/01/2024\n" +
	"\n" +
	"Main,2,75.50,Deposit 2,03/02/2024\n" +
	",3,1.00,orphan,03/02/2024\n" +
	"Payroll,4,10.00,Payroll,03/03/2024\n"

func TestParseCSV(t *testing.T) {
	table, err := ParseFile("journal.CSV", strings.NewReader(ledgerCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Bank Account Description", "Batch Number", "Amount", "Batch Description", "Posting Date"}, table.Columns)
	require.Len(t, table.Rows, 4, "blank lines are skipped")
	assert.Equal(t, "120.00", table.Rows[0]["Amount"])

	_, ok := table.Rows[2].Lookup("Bank Account Description")
	assert.False(t, ok, "empty cells are absent")
}

func TestParseCSVSniffsDelimiter(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("Account;Amount;Date\nACC1;1,50;2024-01-01\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Account", "Amount", "Date"}, table.Columns)
	assert.Equal(t, "1,50", table.Rows[0]["Amount"])

	table, err = ParseCSV(strings.NewReader("Account\tAmount\nACC1\t3\n"))
	require.NoError(t, err)
	assert.Equal(t, "3", table.Rows[0]["Amount"])
}

func TestParseCSVDuplicateHeaders(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("Amount,Amount,,Memo\n1,2,x,y\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount", "Amount_1", "", "Memo"}, table.Columns)
	assert.Equal(t, []string{"Amount", "Amount_1", "Memo"}, table.NonEmptyColumns())
	assert.Equal(t, matching.Row{"Amount": "1", "Amount_1": "2", "Memo": "y"}, table.Rows[0])
}

func TestParseEmptyAndUnknown(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("\n\n"))
	assert.True(t, errors.Is(err, ErrEmptyFile))

	_, err = ParseFile("statement.pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Account", "Amount", "Date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"ACC1", "120.00", "2024-03-01"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"ACC1", "80", "2024-03-02"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseFile("bank.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Account", "Amount", "Date"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "ACC1", table.Rows[1]["Account"])
	assert.Equal(t, "80", table.Rows[1]["Amount"])
	assert.Len(t, table.Preview(1), 1)
	assert.Len(t, table.Preview(10), 2)
}

func TestLoadLedger(t *testing.T) {
	load := LoadLedger([]Source{
		{Name: "jan.csv", Reader: strings.NewReader(ledgerCSV)},
		{Name: "bank.csv", Reader: strings.NewReader("Account,Amount\nACC1,1\n")},
		{Name: "notes.docx", Reader: strings.NewReader("")},
	}, matching.DefaultLedgerColumns)

	assert.Equal(t, []string{"jan.csv"}, load.Files)
	require.Len(t, load.Skipped, 2)
	assert.Equal(t, "bank.csv", load.Skipped[0].Name)
	assert.Contains(t, load.Skipped[0].Reason, "Batch Number")
	assert.Equal(t, 3, load.RowCount, "rows without an account are dropped")

	accounts := Accounts(load.Rows, matching.DefaultLedgerColumns)
	assert.Equal(t, []AccountSummary{{Account: "Main", Rows: 2}, {Account: "Payroll", Rows: 1}}, accounts)
}
