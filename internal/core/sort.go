package core

import (
	"fmt"
	"sort"
	"strings"
)

// Column identifies a sortable table column.
type Column int

const (
	ColumnID Column = iota
	ColumnName
	ColumnParentID
)

func (c Column) String() string {
	switch c {
	case ColumnID:
		return "id"
	case ColumnName:
		return "name"
	case ColumnParentID:
		return "parentId"
	default:
		return "unknown"
	}
}

// ParseColumn maps a column name (as used in URLs) to a Column.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id":
		return ColumnID, nil
	case "name":
		return ColumnName, nil
	case "parentid", "parent_id", "parent":
		return ColumnParentID, nil
	default:
		return 0, fmt.Errorf("unknown column %q", s)
	}
}

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState is the current column/direction selection. The zero value is
// "as read": display order equals decode order. Once a column has been
// clicked, as-read order is only restored by loading a new file.
type SortState struct {
	Column    Column
	Direction Direction
	Applied   bool
}

// AsRead reports whether no sort has been applied.
func (s SortState) AsRead() bool {
	return !s.Applied
}

// nextSortState advances the toggle for a header click. Clicking the
// column that is currently sorted descending flips it to ascending;
// every other click lands on descending. As-read is never produced.
func nextSortState(clicked Column, current SortState) SortState {
	if current.Applied && current.Column == clicked && current.Direction == Descending {
		return SortState{Column: clicked, Direction: Ascending, Applied: true}
	}
	return SortState{Column: clicked, Direction: Descending, Applied: true}
}

// ApplySort handles a header click: it advances the toggle state and
// returns a reordered copy of records. The input slice is not modified.
// The sort is stable; records with equal keys keep their relative order.
func ApplySort(records []Record, clicked Column, current SortState) ([]Record, SortState) {
	next := nextSortState(clicked, current)
	out := make([]Record, len(records))
	copy(out, records)
	sortRecords(out, next)
	return out, next
}

// sortRecords orders records in place per state. An absent parent ID
// sorts as the value 0; it is never excluded from the list.
func sortRecords(records []Record, state SortState) {
	if !state.Applied {
		return
	}
	less := lessFunc(state.Column)
	if state.Direction == Descending {
		asc := less
		less = func(a, b Record) bool { return asc(b, a) }
	}
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

func lessFunc(col Column) func(a, b Record) bool {
	switch col {
	case ColumnName:
		return func(a, b Record) bool { return a.Name < b.Name }
	case ColumnParentID:
		return func(a, b Record) bool { return a.ParentID.Int64 < b.ParentID.Int64 }
	default:
		return func(a, b Record) bool { return a.ID < b.ID }
	}
}
