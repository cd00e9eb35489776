package export

import (
	"fmt"
	"io"
	"regexp"
	"time"

	"batch-reconciliation-backend/internal/services/reconciliation"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary       = "Summary"
	SheetMatches       = "Matches"
	SheetUnmatchedPCC  = "Unmatched Batches"
	SheetUnmatchedBank = "Unmatched Bank Transactions"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds the download name for a report on account.
func FileName(account string, now time.Time) string {
	return fmt.Sprintf("Bank_Reconciliation_%s_%s.xlsx",
		unsafeName.ReplaceAllString(account, "_"),
		now.UTC().Format("2006-01-02T15-04-05"),
	)
}

// WriteWorkbook renders res as an xlsx document into w.
func WriteWorkbook(w io.Writer, res *reconciliation.Result, generatedAt time.Time) error {
	f, err := NewWorkbook(res, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// NewWorkbook builds the four report sheets.
func NewWorkbook(res *reconciliation.Result, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetMatches, SheetUnmatchedPCC, SheetUnmatchedBank} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	steps := []func(*excelize.File, *reconciliation.Result, int) error{
		func(f *excelize.File, res *reconciliation.Result, style int) error {
			return writeSummary(f, res, generatedAt, style)
		},
		writeMatches,
		writeUnmatchedBatches,
		writeUnmatchedBank,
	}
	for _, step := range steps {
		if err := step(f, res, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, res *reconciliation.Result, generatedAt time.Time, style int) error {
	unmatchedBatches := len(res.UnmatchedBatches)
	unmatchedBank := len(res.UnmatchedBankRecords)
	rows := [][]interface{}{
		{"PCC Bank Reconciliation Report"},
		{"Generated on:", generatedAt.Format("2006-01-02 15:04:05")},
		{""},
		{"Bank Reconciliation Summary"},
		{"PCC Bank Account:", res.SelectedAccount},
		{"Bank Identifier:", res.MappedBankID},
		{""},
		{"Financial Summary"},
		{"PCC Total:", res.PCCTotal.StringFixed(2)},
		{"Bank Total:", res.BankTotal.StringFixed(2)},
		{"Difference:", res.Difference.StringFixed(2)},
		{"Status:", res.Status},
		{""},
		{"Counts"},
		{"PCC Batches:", res.TotalBatches},
		{"Bank Transactions:", res.TotalBankRecords},
		{"Matches:", res.TotalMatches},
		{"Batches Without Bank Match:", unmatchedBatches},
		{"Bank Transactions Without Batch Match:", unmatchedBank},
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A4", "A8", "A14"} {
		if err := f.SetCellStyle(SheetSummary, cell, cell, style); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 38)
}

func writeMatches(f *excelize.File, res *reconciliation.Result, style int) error {
	header := []interface{}{"Batch Number", "Batch Description", "Posting Date", "Batch Amount", "Bank Date", "Bank Description", "Bank Amount", "Difference"}
	rows := make([][]interface{}, 0, len(res.Matches))
	for _, m := range res.Matches {
		rows = append(rows, []interface{}{
			m.Batch.BatchNumber,
			m.Batch.Description,
			m.Batch.PostingDate,
			m.Batch.TotalAmount.InexactFloat64(),
			m.BankTransaction.Date,
			m.BankTransaction.Description,
			m.BankTransaction.Amount.InexactFloat64(),
			m.Difference.InexactFloat64(),
		})
	}
	return writeTable(f, SheetMatches, header, rows, style)
}

func writeUnmatchedBatches(f *excelize.File, res *reconciliation.Result, style int) error {
	header := []interface{}{"Batch Number", "Batch Description", "Posting Date", "Amount", "Transactions"}
	rows := make([][]interface{}, 0, len(res.UnmatchedBatches))
	for _, b := range res.UnmatchedBatches {
		rows = append(rows, []interface{}{
			b.BatchNumber,
			b.Description,
			b.PostingDate,
			b.TotalAmount.InexactFloat64(),
			len(b.Transactions),
		})
	}
	return writeTable(f, SheetUnmatchedPCC, header, rows, style)
}

func writeUnmatchedBank(f *excelize.File, res *reconciliation.Result, style int) error {
	header := []interface{}{"Bank Identifier", "Date", "Description", "Amount"}
	rows := make([][]interface{}, 0, len(res.UnmatchedBankRecords))
	for _, r := range res.UnmatchedBankRecords {
		rows = append(rows, []interface{}{
			r.Identifier,
			r.Date,
			r.Description,
			r.Amount.InexactFloat64(),
		})
	}
	return writeTable(f, SheetUnmatchedBank, header, rows, style)
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, style int) error {
	if err := writeRows(f, sheet, append([][]interface{}{header}, rows...)); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 20)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}
