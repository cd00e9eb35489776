package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"batch-reconciliation-backend/internal/services/matching"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no header row")
)

// Table is a parsed file: header columns in file order and one Row per data line.
type Table struct {
	Columns []string
	Rows    []matching.Row
}

// Preview returns at most n rows.
func (t *Table) Preview(n int) []matching.Row {
	if n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// ParseFile picks the parser from the file extension.
func ParseFile(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	case ".xls":
		return ParseXLS(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseCSV reads delimited text with a header row. The delimiter is sniffed
// from the header line (comma, semicolon or tab).
func ParseCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	sample, _ := br.Peek(4096)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return buildTable(records)
}

func sniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return buildTable(rows)
}

// ParseXLS reads the first sheet of a legacy BIFF workbook.
func ParseXLS(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return buildTable(rows)
}

// buildTable turns header + data lines into rows. Blank lines are skipped,
// empty cells are left out of the row, duplicate headers get a _N suffix.
func buildTable(records [][]string) (*Table, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyFile
	}

	columns := headerColumns(records[start])
	table := &Table{Columns: columns, Rows: []matching.Row{}}

	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(matching.Row, len(columns))
		for j, cell := range rec {
			if j >= len(columns) || columns[j] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[columns[j]] = cell
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func headerColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "_" + strconv.Itoa(n)
		} else {
			seen[h] = 1
		}
		columns[i] = h
	}
	return columns
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NonEmptyColumns drops the unnamed header positions.
func (t *Table) NonEmptyColumns() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
