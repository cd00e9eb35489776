package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ledger(account, batch, amount, desc string) LedgerRecord {
	return LedgerRecord{Account: account, BatchNumber: batch, Amount: d(amount), BatchDescription: desc}
}

func bank(index int, amount string) BankRecord {
	return BankRecord{Index: index, Identifier: "ACC1", Amount: d(amount)}
}

func TestAggregateBatchesFirstWins(t *testing.T) {
	records := []LedgerRecord{
		ledger("Main", "7", "100.00", "Rent"),
		ledger("Main", "8", "5.00", "Fees"),
		ledger("Main", "7", "25.50", "Rent-late"),
	}

	batches := AggregateBatches(records)
	require.Len(t, batches, 2)

	assert.Equal(t, "7", batches[0].BatchNumber)
	assert.Equal(t, "Rent", batches[0].Description)
	assert.True(t, batches[0].TotalAmount.Equal(d("125.50")))
	assert.Len(t, batches[0].Transactions, 2)

	assert.Equal(t, "8", batches[1].BatchNumber, "batches keep first-appearance order")
}

func TestAggregateBatchesInsertionOrderForNumericKeys(t *testing.T) {
	records := []LedgerRecord{
		ledger("Main", "10", "1", ""),
		ledger("Main", "2", "1", ""),
		ledger("Main", "1", "1", ""),
	}
	batches := AggregateBatches(records)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"10", "2", "1"}, []string{batches[0].BatchNumber, batches[1].BatchNumber, batches[2].BatchNumber})
}

func TestFilterAccountExact(t *testing.T) {
	records := []LedgerRecord{
		ledger("Main", "1", "1", ""),
		ledger("main", "2", "1", ""),
		ledger("Main ", "3", "1", ""),
	}
	got := FilterAccount(records, "Main")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].BatchNumber)
}

func TestMatchAmountsToleranceBoundary(t *testing.T) {
	batches := []Batch{{BatchNumber: "1", TotalAmount: d("100.00")}}

	p := MatchAmounts(batches, []BankRecord{bank(0, "100.009")}, DefaultTolerance)
	assert.Len(t, p.Matches, 1)

	p = MatchAmounts(batches, []BankRecord{bank(0, "100.01")}, DefaultTolerance)
	assert.Empty(t, p.Matches)
	assert.Len(t, p.UnmatchedBatches, 1)
	assert.Len(t, p.UnmatchedBankRecords, 1)
}

func TestMatchAmountsGreedyOrder(t *testing.T) {
	a := Batch{BatchNumber: "A", TotalAmount: d("50")}
	b := Batch{BatchNumber: "B", TotalAmount: d("50")}
	records := []BankRecord{bank(0, "50")}

	p := MatchAmounts([]Batch{a, b}, records, DefaultTolerance)
	require.Len(t, p.Matches, 1)
	assert.Equal(t, "A", p.Matches[0].Batch.BatchNumber)
	require.Len(t, p.UnmatchedBatches, 1)
	assert.Equal(t, "B", p.UnmatchedBatches[0].BatchNumber)

	p = MatchAmounts([]Batch{b, a}, records, DefaultTolerance)
	require.Len(t, p.Matches, 1)
	assert.Equal(t, "B", p.Matches[0].Batch.BatchNumber)
	require.Len(t, p.UnmatchedBatches, 1)
	assert.Equal(t, "A", p.UnmatchedBatches[0].BatchNumber)
}

func TestMatchAmountsConsumesFirstFit(t *testing.T) {
	batches := []Batch{
		{BatchNumber: "1", TotalAmount: d("20")},
		{BatchNumber: "2", TotalAmount: d("20")},
		{BatchNumber: "3", TotalAmount: d("99")},
	}
	records := []BankRecord{bank(0, "20"), bank(1, "5"), bank(2, "20"), bank(3, "20")}

	p := MatchAmounts(batches, records, DefaultTolerance)
	require.Len(t, p.Matches, 2)
	assert.Equal(t, 0, p.Matches[0].BankTransaction.Index)
	assert.Equal(t, 2, p.Matches[1].BankTransaction.Index)
	assert.True(t, p.Matches[0].Difference.IsZero())

	require.Len(t, p.UnmatchedBankRecords, 2)
	assert.Equal(t, 1, p.UnmatchedBankRecords[0].Index)
	assert.Equal(t, 3, p.UnmatchedBankRecords[1].Index)

	assert.Equal(t, len(batches), len(p.Matches)+len(p.UnmatchedBatches))
	assert.Equal(t, len(records), len(p.Matches)+len(p.UnmatchedBankRecords))
}

func TestMatchAmountsDoesNotMutateInput(t *testing.T) {
	records := []BankRecord{bank(0, "1"), bank(1, "2")}
	_ = MatchAmounts([]Batch{{TotalAmount: d("1")}}, records, DefaultTolerance)
	assert.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Index)
}

func TestMatchAmountsEmpty(t *testing.T) {
	p := MatchAmounts(nil, nil, decimal.Zero)
	assert.NotNil(t, p.Matches)
	assert.NotNil(t, p.UnmatchedBatches)
	assert.NotNil(t, p.UnmatchedBankRecords)
}

func TestTotals(t *testing.T) {
	batches := []Batch{{TotalAmount: d("120.00")}, {TotalAmount: d("75.50")}}
	assert.True(t, BatchTotal(batches).Equal(d("195.50")))
	assert.True(t, BankTotal([]BankRecord{bank(0, "120"), bank(1, "80")}).Equal(d("200")))
}
