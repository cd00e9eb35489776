package matching

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMappingValidate(t *testing.T) {
	m := ColumnMapping{Identifier: "Account", Amount: "Amt", Date: "Date"}
	assert.NoError(t, m.Validate())

	m.Date = ""
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnboundRole))
	assert.Contains(t, err.Error(), "date")

	assert.True(t, ColumnMapping{}.IsZero())
}

func TestFieldAbsent(t *testing.T) {
	r := Row{"Account": "ACC1", "Memo": nil}
	m := ColumnMapping{Identifier: "Account", Amount: "Amt", Date: "Date"}

	v, ok := Field(r, m, RoleIdentifier)
	assert.True(t, ok)
	assert.Equal(t, "ACC1", v)

	_, ok = Field(r, m, RoleAmount)
	assert.False(t, ok, "missing column is absent")

	_, ok = Field(r, m, RoleDescription)
	assert.False(t, ok, "unbound role is absent")

	_, ok = r.Lookup("Memo")
	assert.False(t, ok, "nil cell is absent")
}

func TestText(t *testing.T) {
	assert.Equal(t, "05", Text("05"))
	assert.Equal(t, "5", Text(5))
	assert.Equal(t, "5", Text(5.0))
	assert.Equal(t, "12.5", Text(12.5))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "true", Text(true))
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"120.00", "120"},
		{" 1,234.50 ", "1234.5"},
		{"$75.50", "75.5"},
		{"(10.25)", "-10.25"},
		{"-", "0"},
		{"", "0"},
		{nil, "0"},
		{42, "42"},
		{99.99, "99.99"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in, Strict)
		require.NoError(t, err, "%v", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%v -> %s", tc.in, got)
	}
}

func TestParseAmountModes(t *testing.T) {
	got, err := ParseAmount("n/a", Lenient)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseAmount("n/a", Strict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestParseModeFromString(t *testing.T) {
	assert.Equal(t, Strict, ParseModeFromString("STRICT"))
	assert.Equal(t, Lenient, ParseModeFromString("lenient"))
	assert.Equal(t, Lenient, ParseModeFromString(""))

	var p ParseMode
	require.NoError(t, p.UnmarshalText([]byte("strict")))
	assert.Equal(t, Strict, p)
}

func TestNewLedgerRecordsStrict(t *testing.T) {
	rows := []Row{
		{"Bank Account Description": "Main", "Batch Number": 1.0, "Amount": "10"},
		{"Bank Account Description": "Main", "Batch Number": "2", "Amount": "ten"},
	}

	records, err := NewLedgerRecords(rows, DefaultLedgerColumns, Lenient)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].BatchNumber)
	assert.True(t, records[1].Amount.IsZero())

	_, err = NewLedgerRecords(rows, DefaultLedgerColumns, Strict)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Index)
	assert.Equal(t, "Amount", rowErr.Column)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestNewBankRecordUnboundDescription(t *testing.T) {
	m := ColumnMapping{Identifier: "Acct", Amount: "Amt", Date: "Date"}
	rec, err := NewBankRecord(3, Row{"Acct": "ACC1", "Amt": "80.00", "Date": "2024-01-02", "Memo": "x"}, m, Strict)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Index)
	assert.Equal(t, "ACC1", rec.Identifier)
	assert.Equal(t, "", rec.Description)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(80)))
}

func TestNewAccountLedgerRecordsSkipsOtherAccounts(t *testing.T) {
	rows := []Row{
		{"Bank Account Description": "Other", "Batch Number": "1", "Amount": "n/a"},
		{"Bank Account Description": "Main", "Batch Number": "2", "Amount": "10.00"},
		{"Bank Account Description": "Main", "Batch Number": "3", "Amount": "oops"},
	}

	_, err := NewAccountLedgerRecords(rows[:2], DefaultLedgerColumns, "Main", Strict)
	require.NoError(t, err)

	_, err = NewAccountLedgerRecords(rows, DefaultLedgerColumns, "Main", Strict)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Index)

	records, err := NewAccountLedgerRecords(rows, DefaultLedgerColumns, "Main", Lenient)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].BatchNumber)
}
