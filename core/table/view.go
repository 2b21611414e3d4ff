package table

import "github.com/AI-Fit-GMS/gms/core/pagination"

type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorUnsorted
	IndicatorAscending
	IndicatorDescending
)

type (
	HeaderCell struct {
		Key       string
		Header    string
		Width     string
		Sortable  bool
		Indicator Indicator
		// NextSort is the state a click on this header would produce.
		NextSort SortState
	}

	Cell struct {
		Key     string
		Content interface{}
	}

	Row struct {
		Record Record
		Cells  []Cell
	}

	View struct {
		Loading      bool
		SkeletonRows int

		Headers      []HeaderCell
		Sort         SortState
		Rows         []Row
		Empty        bool
		EmptyMessage string
		ColSpan      int
		Clickable    bool

		Pagination *pagination.View
	}
)

// Render builds the view of the table's current state.
func (t *Table) Render() View {
	if t.props.Loading {
		return View{Loading: true, SkeletonRows: SkeletonRows}
	}

	v := View{
		Headers:   make([]HeaderCell, 0, len(t.props.Columns)),
		Sort:      t.sort,
		Clickable: t.props.OnRowClick != nil,
	}
	for _, col := range t.props.Columns {
		v.Headers = append(v.Headers, t.headerCell(col))
	}

	if len(t.props.Data) == 0 {
		v.Empty = true
		v.EmptyMessage = t.emptyMessage()
		v.ColSpan = len(t.props.Columns)
	} else {
		rows := t.Rows()
		v.Rows = make([]Row, 0, len(rows))
		for _, rec := range rows {
			v.Rows = append(v.Rows, renderRow(rec, t.props.Columns))
		}
	}

	if t.props.Pagination != nil {
		pv := t.props.Pagination.Render()
		v.Pagination = &pv
	}
	return v
}

func (t *Table) headerCell(col Column) HeaderCell {
	hc := HeaderCell{
		Key:      col.Key,
		Header:   col.Header,
		Width:    col.Width,
		Sortable: col.Sortable,
	}
	if !col.Sortable {
		return hc
	}
	hc.NextSort = t.sort.Toggle(col.Key)
	switch {
	case t.sort.Key != col.Key:
		hc.Indicator = IndicatorUnsorted
	case t.sort.Direction == Descending:
		hc.Indicator = IndicatorDescending
	default:
		hc.Indicator = IndicatorAscending
	}
	return hc
}

func renderRow(rec Record, cols []Column) Row {
	row := Row{Record: rec, Cells: make([]Cell, 0, len(cols))}
	for _, col := range cols {
		var content interface{}
		if col.Render != nil {
			content = col.Render(rec)
		} else {
			content = stringify(rec.Get(col.Key))
		}
		row.Cells = append(row.Cells, Cell{Key: col.Key, Content: content})
	}
	return row
}
