package table

import (
	"sort"

	"github.com/AI-Fit-GMS/gms/core"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps the "asc"/"desc" query values; anything else is ascending.
func ParseDirection(s string) Direction {
	if Direction(s) == Descending {
		return Descending
	}
	return Ascending
}

// SortState is the active sort of a table. The zero value means "no sort".
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func (s SortState) IsZero() bool { return s.Key == "" }

// Toggle returns the state a click on the header of `key` produces:
// ascending on a new column, then flipping between ascending and descending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// sortRecords returns a sorted copy of data; data itself is left untouched.
func sortRecords(data []Record, state SortState) []Record {
	rows := make([]Record, len(data))
	copy(rows, data)
	if state.IsZero() {
		return rows
	}

	desc := state.Direction == Descending
	sort.SliceStable(rows, func(i, j int) bool {
		cmp, ok := core.CompareValues(rows[i].Get(state.Key), rows[j].Get(state.Key))
		if !ok {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return rows
}
