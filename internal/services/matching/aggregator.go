package matching

import "github.com/shopspring/decimal"

// Batch is the aggregate of ledger records sharing a batch number.
type Batch struct {
	BatchNumber  string          `json:"batchNumber"`
	Description  string          `json:"description"`
	PostingDate  string          `json:"postingDate"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Transactions []LedgerRecord  `json:"transactions"`
}

// FilterAccount keeps the records whose account equals account exactly.
func FilterAccount(records []LedgerRecord, account string) []LedgerRecord {
	var out []LedgerRecord
	for _, rec := range records {
		if rec.Account == account {
			out = append(out, rec)
		}
	}
	return out
}

// AggregateBatches groups records by batch number. Batches come back in order
// of first appearance; description and posting date are taken from the first
// record of each batch.
func AggregateBatches(records []LedgerRecord) []Batch {
	index := make(map[string]int)
	var batches []Batch

	for _, rec := range records {
		i, ok := index[rec.BatchNumber]
		if !ok {
			i = len(batches)
			index[rec.BatchNumber] = i
			batches = append(batches, Batch{
				BatchNumber: rec.BatchNumber,
				Description: rec.BatchDescription,
				PostingDate: rec.PostingDate,
				TotalAmount: decimal.Zero,
			})
		}
		b := &batches[i]
		b.TotalAmount = b.TotalAmount.Add(rec.Amount)
		b.Transactions = append(b.Transactions, rec)
	}
	return batches
}

// BatchTotal sums the batch totals.
func BatchTotal(batches []Batch) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		total = total.Add(b.TotalAmount)
	}
	return total
}

// BankTotal sums the record amounts.
func BankTotal(records []BankRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
