package reconciliation

import (
	"errors"
	"fmt"
	"strings"

	"batch-reconciliation-backend/internal/services/matching"

	"github.com/shopspring/decimal"
)

var (
	ErrNoAccountSelected = errors.New("no ledger account selected")
	ErrNoAccountMapping  = errors.New("no bank identifier mapped for account")
)

const (
	StatusMatched     = "MATCHED"
	StatusDiscrepancy = "DISCREPANCY"
)

// IsConfigurationError reports errors raised before any aggregation runs
// because the mapping or account selection is incomplete.
func IsConfigurationError(err error) bool {
	return errors.Is(err, matching.ErrUnboundRole) ||
		errors.Is(err, ErrNoAccountSelected) ||
		errors.Is(err, ErrNoAccountMapping)
}

// IsDataError reports a Strict-mode rejection of a malformed cell.
func IsDataError(err error) bool {
	return errors.Is(err, matching.ErrInvalidAmount)
}

// Input is everything one reconciliation run reads.
type Input struct {
	LedgerRecords []matching.LedgerRecord
	BankRows      []matching.Row
	Mapping       matching.ColumnMapping
	// AccountMap maps a ledger account description to a bank identifier.
	AccountMap map[string]string
	Account    string
	Mode       matching.ParseMode
	// Tolerance defaults to matching.DefaultTolerance when zero.
	Tolerance decimal.Decimal
}

// Result is the serializable outcome of a run.
type Result struct {
	PCCTotal             decimal.Decimal       `json:"pccTotal"`
	BankTotal            decimal.Decimal       `json:"bankTotal"`
	Difference           decimal.Decimal       `json:"difference"`
	TotalMatches         int                   `json:"totalMatches"`
	TotalBatches         int                   `json:"totalBatches"`
	TotalBankRecords     int                   `json:"totalBankRecords"`
	Matches              []matching.Match      `json:"matches"`
	UnmatchedBatches     []matching.Batch      `json:"unmatchedPcc"`
	UnmatchedBankRecords []matching.BankRecord `json:"unmatchedBank"`
	SelectedAccount      string                `json:"selectedPccBank"`
	MappedBankID         string                `json:"mappedBankId"`
	Status               string                `json:"status"`
}

// ValidateConfig checks the mapping and the account selection and returns the
// bank identifier mapped to account. It reads no rows.
func ValidateConfig(m matching.ColumnMapping, accountMap map[string]string, account string) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if account == "" {
		return "", ErrNoAccountSelected
	}
	bankID := accountMap[account]
	if strings.TrimSpace(bankID) == "" {
		return "", fmt.Errorf("%w: %q", ErrNoAccountMapping, account)
	}
	return bankID, nil
}

// Reconcile aggregates the selected account's ledger rows into batches,
// filters the statement to the mapped bank identifier and matches the two.
// Either a complete Result or an error is returned.
func Reconcile(in Input) (*Result, error) {
	bankID, err := ValidateConfig(in.Mapping, in.AccountMap, in.Account)
	if err != nil {
		return nil, err
	}
	tolerance := in.Tolerance
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = matching.DefaultTolerance
	}

	batches := matching.AggregateBatches(matching.FilterAccount(in.LedgerRecords, in.Account))

	records, err := considerBankRows(in.BankRows, in.Mapping, bankID, in.Mode)
	if err != nil {
		return nil, err
	}

	pccTotal := matching.BatchTotal(batches)
	bankTotal := matching.BankTotal(records)
	difference := pccTotal.Sub(bankTotal)

	p := matching.MatchAmounts(batches, records, tolerance)

	status := StatusDiscrepancy
	if difference.Abs().LessThan(matching.DefaultTolerance) {
		status = StatusMatched
	}

	return &Result{
		PCCTotal:             pccTotal,
		BankTotal:            bankTotal,
		Difference:           difference,
		TotalMatches:         len(p.Matches),
		TotalBatches:         len(batches),
		TotalBankRecords:     len(records),
		Matches:              p.Matches,
		UnmatchedBatches:     p.UnmatchedBatches,
		UnmatchedBankRecords: p.UnmatchedBankRecords,
		SelectedAccount:      in.Account,
		MappedBankID:         bankID,
		Status:               status,
	}, nil
}

// considerBankRows keeps rows whose identifier, compared as text, equals
// bankID. "5" and "05" are different identifiers.
func considerBankRows(rows []matching.Row, m matching.ColumnMapping, bankID string, mode matching.ParseMode) ([]matching.BankRecord, error) {
	records := []matching.BankRecord{}
	for i, r := range rows {
		v, ok := matching.Field(r, m, matching.RoleIdentifier)
		if !ok || matching.Text(v) != bankID {
			continue
		}
		rec, err := matching.NewBankRecord(i, r, m, mode)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
