// Package table implements a generic, sortable record table.
//
// A Table holds the caller supplied data and columns plus its own sort state.
// Render builds a View (a UI agnostic description of what to draw) which is then
// written out as HTML for the dashboards or as text for the terminal.
package table

import "github.com/AI-Fit-GMS/gms/core/pagination"

const (
	DefaultEmptyMessage = "No data available"
	SkeletonRows        = 5
)

type (
	Column struct {
		Key      string
		Header   string
		Sortable bool
		// Render overrides the default cell content. Its result is used verbatim.
		Render func(rec Record) interface{}
		Width  string
	}

	Props struct {
		Data         []Record
		Columns      []Column
		OnRowClick   func(rec Record)
		Loading      bool
		EmptyMessage string
		Pagination   *pagination.Strip
	}

	Table struct {
		props Props
		sort  SortState
	}
)

func New(props Props) *Table {
	return &Table{props: props}
}

// SetProps replaces the inputs of the table. The sort state is kept.
func (t *Table) SetProps(props Props) {
	t.props = props
}

func (t *Table) Sort() SortState { return t.sort }

func (t *Table) column(key string) (Column, bool) {
	for _, col := range t.props.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

func (t *Table) sortable(key string) bool {
	col, ok := t.column(key)
	return ok && col.Sortable
}

// ClickHeader applies a header click. Clicks on non-sortable or unknown columns do nothing.
func (t *Table) ClickHeader(key string) {
	if !t.sortable(key) {
		return
	}
	t.sort = t.sort.Toggle(key)
}

// SetSort restores a sort state, eg. one carried by a link.
// A key that does not name a sortable column clears the sort.
func (t *Table) SetSort(state SortState) {
	if !t.sortable(state.Key) {
		t.sort = SortState{}
		return
	}
	if state.Direction != Descending {
		state.Direction = Ascending
	}
	t.sort = state
}

// Rows returns the displayed rows: a sorted copy of the data.
func (t *Table) Rows() []Record {
	return sortRecords(t.props.Data, t.sort)
}

// ClickRow reports a click on the i-th displayed row.
func (t *Table) ClickRow(i int) {
	if t.props.OnRowClick == nil || t.props.Loading {
		return
	}
	rows := t.Rows()
	if i < 0 || i >= len(rows) {
		return
	}
	t.props.OnRowClick(rows[i])
}

func (t *Table) emptyMessage() string {
	if t.props.EmptyMessage == "" {
		return DefaultEmptyMessage
	}
	return t.props.EmptyMessage
}
