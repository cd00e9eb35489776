package ingest

import (
	"fmt"
	"io"
	"strings"

	"batch-reconciliation-backend/internal/services/matching"
)

// Source is one uploaded file.
type Source struct {
	Name   string
	Reader io.Reader
}

// FileError explains why a file was left out of the ledger.
type FileError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

type LedgerLoad struct {
	Rows     []matching.Row `json:"-"`
	Files    []string       `json:"files"`
	Skipped  []FileError    `json:"skipped"`
	RowCount int            `json:"rowCount"`
}

// LoadLedger concatenates ledger exports. A file that cannot be parsed or
// lacks a required column is skipped and reported; rows without an account
// description are dropped.
func LoadLedger(sources []Source, cols matching.LedgerColumns) *LedgerLoad {
	load := &LedgerLoad{Rows: []matching.Row{}, Files: []string{}, Skipped: []FileError{}}

	for _, src := range sources {
		table, err := ParseFile(src.Name, src.Reader)
		if err != nil {
			load.Skipped = append(load.Skipped, FileError{Name: src.Name, Reason: err.Error()})
			continue
		}
		if missing := missingColumns(table.Columns, cols.Required()); len(missing) > 0 {
			load.Skipped = append(load.Skipped, FileError{
				Name:   src.Name,
				Reason: "not a cash receipt journal, missing columns: " + strings.Join(missing, ", "),
			})
			continue
		}
		for _, row := range table.Rows {
			if v, ok := row.Lookup(cols.Account); ok && matching.Text(v) != "" {
				load.Rows = append(load.Rows, row)
			}
		}
		load.Files = append(load.Files, src.Name)
	}
	load.RowCount = len(load.Rows)
	return load
}

func missingColumns(have, want []string) []string {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}
	var missing []string
	for _, c := range want {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

type AccountSummary struct {
	Account string `json:"account"`
	Rows    int    `json:"rows"`
}

// Accounts lists the distinct account descriptions in order of first appearance.
func Accounts(rows []matching.Row, cols matching.LedgerColumns) []AccountSummary {
	index := make(map[string]int)
	out := []AccountSummary{}
	for _, row := range rows {
		v, ok := row.Lookup(cols.Account)
		if !ok {
			continue
		}
		name := matching.Text(v)
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, AccountSummary{Account: name})
		}
		out[i].Rows++
	}
	return out
}
