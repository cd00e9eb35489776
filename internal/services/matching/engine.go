package matching

import "github.com/shopspring/decimal"

// DefaultTolerance is the absolute amount difference below which a batch and
// a bank record are considered equal.
var DefaultTolerance = decimal.New(1, -2)

// Match pairs a batch with the bank record it consumed.
type Match struct {
	Batch           Batch           `json:"pccBatch"`
	BankTransaction BankRecord      `json:"bankTransaction"`
	Difference      decimal.Decimal `json:"difference"`
}

// Partition is the outcome of matching: every batch and every bank record
// appears in exactly one of the three lists.
type Partition struct {
	Matches              []Match      `json:"matches"`
	UnmatchedBatches     []Batch      `json:"unmatchedPcc"`
	UnmatchedBankRecords []BankRecord `json:"unmatchedBank"`
}

// AmountsMatch reports whether |a-b| < tolerance.
func AmountsMatch(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// MatchAmounts pairs each batch, in order, with the first unconsumed record
// whose amount is within tolerance of the batch total. A consumed record is
// never offered to a later batch. The pairing is first-fit and depends on
// input order.
func MatchAmounts(batches []Batch, records []BankRecord, tolerance decimal.Decimal) Partition {
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = DefaultTolerance
	}

	p := Partition{
		Matches:              []Match{},
		UnmatchedBatches:     []Batch{},
		UnmatchedBankRecords: []BankRecord{},
	}
	consumed := make([]bool, len(records))

	for _, batch := range batches {
		found := -1
		for i, rec := range records {
			if consumed[i] {
				continue
			}
			if AmountsMatch(rec.Amount, batch.TotalAmount, tolerance) {
				found = i
				break
			}
		}
		if found < 0 {
			p.UnmatchedBatches = append(p.UnmatchedBatches, batch)
			continue
		}
		consumed[found] = true
		p.Matches = append(p.Matches, Match{
			Batch:           batch,
			BankTransaction: records[found],
			Difference:      decimal.Zero,
		})
	}

	for i, rec := range records {
		if !consumed[i] {
			p.UnmatchedBankRecords = append(p.UnmatchedBankRecords, rec)
		}
	}
	return p
}
