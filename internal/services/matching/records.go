package matching

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerColumns names the columns of an internal ledger export.
type LedgerColumns struct {
	Account          string
	BatchNumber      string
	Amount           string
	BatchDescription string
	PostingDate      string
}

// DefaultLedgerColumns is the header vocabulary of the cash receipt journal export.
var DefaultLedgerColumns = LedgerColumns{
	Account:          "Bank Account Description",
	BatchNumber:      "Batch Number",
	Amount:           "Amount",
	BatchDescription: "Batch Description",
	PostingDate:      "Posting Date",
}

// Required lists the columns a ledger file must carry to be accepted.
func (c LedgerColumns) Required() []string {
	return []string{c.Account, c.BatchNumber, c.Amount}
}

// LedgerRecord is one row of the internal ledger.
type LedgerRecord struct {
	Account          string          `json:"account"`
	BatchNumber      string          `json:"batchNumber"`
	Amount           decimal.Decimal `json:"amount"`
	BatchDescription string          `json:"batchDescription"`
	PostingDate      string          `json:"postingDate"`
	Row              Row             `json:"row,omitempty"`
}

// BankRecord is one row of the external statement read through a ColumnMapping.
type BankRecord struct {
	// Index is the position of the row in the statement as supplied.
	Index       int             `json:"index"`
	Identifier  string          `json:"identifier"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Row         Row             `json:"row,omitempty"`
}

// RowError locates a data-quality failure raised in Strict mode.
type RowError struct {
	Index  int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Index+1, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewLedgerRecords converts parsed ledger rows into records, keeping order.
func NewLedgerRecords(rows []Row, cols LedgerColumns, mode ParseMode) ([]LedgerRecord, error) {
	return newLedgerRecords(rows, cols, mode, func(Row) bool { return true })
}

// NewAccountLedgerRecords converts only the rows whose account equals account
// exactly. Amounts of other accounts are never parsed, so Strict mode cannot
// reject them. RowError indexes refer to rows.
func NewAccountLedgerRecords(rows []Row, cols LedgerColumns, account string, mode ParseMode) ([]LedgerRecord, error) {
	return newLedgerRecords(rows, cols, mode, func(r Row) bool {
		return textOf(r, cols.Account) == account
	})
}

func newLedgerRecords(rows []Row, cols LedgerColumns, mode ParseMode, keep func(Row) bool) ([]LedgerRecord, error) {
	records := make([]LedgerRecord, 0, len(rows))
	for i, r := range rows {
		if !keep(r) {
			continue
		}
		rawAmount, _ := r.Lookup(cols.Amount)
		amount, err := ParseAmount(rawAmount, mode)
		if err != nil {
			return nil, &RowError{Index: i, Column: cols.Amount, Err: err}
		}
		records = append(records, LedgerRecord{
			Account:          textOf(r, cols.Account),
			BatchNumber:      textOf(r, cols.BatchNumber),
			Amount:           amount,
			BatchDescription: textOf(r, cols.BatchDescription),
			PostingDate:      textOf(r, cols.PostingDate),
			Row:              r,
		})
	}
	return records, nil
}

// NewBankRecord reads one statement row through the mapping. An unbound
// description renders as empty.
func NewBankRecord(index int, r Row, m ColumnMapping, mode ParseMode) (BankRecord, error) {
	rawAmount, _ := Field(r, m, RoleAmount)
	amount, err := ParseAmount(rawAmount, mode)
	if err != nil {
		return BankRecord{}, &RowError{Index: index, Column: m.Amount, Err: err}
	}
	return BankRecord{
		Index:       index,
		Identifier:  textOf(r, m.Identifier),
		Amount:      amount,
		Date:        textOf(r, m.Date),
		Description: textOf(r, m.Description),
		Row:         r,
	}, nil
}

func textOf(r Row, column string) string {
	v, ok := r.Lookup(column)
	if !ok {
		return ""
	}
	return Text(v)
}
