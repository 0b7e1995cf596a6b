package cyphertx

import (
	"encoding/json"
	"fmt"
)

// Result is one statement's tabular outcome: named columns and ordered rows
// of opaque cell values. A Result is immutable once produced, so its rows can
// be iterated any number of times.
type Result struct {
	columns []string
	rows    [][]json.RawMessage
}

// BuildResult materializes a Result from already-typed cell values. It is the
// seam used by alternative runners (the Bolt adapter) and by tests; the HTTP
// path produces Results directly from decoded responses.
func BuildResult(columns []string, rows [][]any) (*Result, error) {
	res := &Result{columns: append([]string(nil), columns...)}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
		cells := make([]json.RawMessage, len(row))
		for j, cell := range row {
			raw, err := json.Marshal(cell)
			if err != nil {
				return nil, fmt.Errorf("encode cell %q of row %d: %w", columns[j], i, err)
			}
			cells[j] = raw
		}
		res.rows = append(res.rows, cells)
	}
	return res, nil
}

// Columns returns a copy of the column names in result order.
func (r *Result) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.rows) }

// Rows returns a fresh iterator over the result's rows. Because the Result is
// fully materialized, calling Rows again restarts iteration from the top.
func (r *Result) Rows() *Rows {
	return &Rows{result: r, index: -1}
}

// Rows iterates Row views in order:
//
//	rows := result.Rows()
//	for rows.Next() {
//		row := rows.Row()
//		...
//	}
type Rows struct {
	result *Result
	index  int
}

// Next advances to the following row, reporting whether one exists.
func (rs *Rows) Next() bool {
	if rs.index+1 >= len(rs.result.rows) {
		return false
	}
	rs.index++
	return true
}

// Row returns the view for the current position. It is valid only after Next
// has returned true.
func (rs *Rows) Row() Row {
	if rs.index < 0 || rs.index >= len(rs.result.rows) {
		return Row{}
	}
	return Row{columns: rs.result.columns, cells: rs.result.rows[rs.index]}
}

// Row is a borrowing view over one result row plus the shared column
// ordering. Extraction is fallible: the cell's wire shape must match the
// destination type exactly.
type Row struct {
	columns []string
	cells   []json.RawMessage
}

// Len returns the number of cells in the row.
func (r Row) Len() int { return len(r.cells) }

// Get extracts the named column's cell into dest, which must be a non-nil
// pointer. A cell holding true coerces into *bool but not *string or *int;
// a non-integral float never coerces into an integer type. Object cells
// coerce into structs or maps with matching JSON shape. Decoding is total,
// so a row may carry fewer cells than the table has columns; looking up a
// column past the row's end fails with ErrColumnOutOfRange.
func (r Row) Get(column string, dest any) error {
	for i, name := range r.columns {
		if name == column {
			if i >= len(r.cells) {
				return &CoercionError{Column: column, Index: i, Target: fmt.Sprintf("%T", dest), cause: ErrColumnOutOfRange}
			}
			return r.extract(i, column, dest)
		}
	}
	return &CoercionError{Column: column, Index: -1, Target: fmt.Sprintf("%T", dest), cause: ErrNoSuchColumn}
}

// GetIndex extracts the cell at position i into dest.
func (r Row) GetIndex(i int, dest any) error {
	if i < 0 || i >= len(r.cells) {
		return &CoercionError{Index: i, Target: fmt.Sprintf("%T", dest), cause: ErrColumnOutOfRange}
	}
	column := ""
	if i < len(r.columns) {
		column = r.columns[i]
	}
	return r.extract(i, column, dest)
}

func (r Row) extract(i int, column string, dest any) error {
	if err := json.Unmarshal(r.cells[i], dest); err != nil {
		return &CoercionError{Column: column, Index: i, Target: fmt.Sprintf("%T", dest), cause: err}
	}
	return nil
}
