package core

import (
	"reflect"
	"testing"
)

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestApplySort_ToggleSequence(t *testing.T) {
	records := []Record{
		{ID: 2, Name: "Beta"},
		{ID: 1, Name: "Alpha"},
		{ID: 3, Name: "Gamma"},
	}

	// First click on a column always lands on descending.
	_, state := ApplySort(records, ColumnID, SortState{})
	if state.AsRead() || state.Column != ColumnID || state.Direction != Descending {
		t.Fatalf("click 1: state = %+v, want id descending", state)
	}

	// Second click on the same column flips to ascending.
	_, state = ApplySort(records, ColumnID, state)
	if state.Column != ColumnID || state.Direction != Ascending {
		t.Fatalf("click 2: state = %+v, want id ascending", state)
	}

	// Third click lands on descending again.
	_, state = ApplySort(records, ColumnID, state)
	if state.Column != ColumnID || state.Direction != Descending {
		t.Fatalf("click 3: state = %+v, want id descending", state)
	}

	// Clicking a different column always lands on descending,
	// whatever the previous column's direction was.
	_, state = ApplySort(records, ColumnName, state)
	if state.Column != ColumnName || state.Direction != Descending {
		t.Fatalf("other column: state = %+v, want name descending", state)
	}

	// As-read is never produced by clicks.
	for i := 0; i < 5; i++ {
		_, state = ApplySort(records, ColumnParentID, state)
		if state.AsRead() {
			t.Fatalf("click %d produced as-read state", i)
		}
	}
}

func TestApplySort_Ordering(t *testing.T) {
	records := []Record{
		{ID: 2, Name: "Beta", ParentID: SomeID(1)},
		{ID: 1, Name: "Alpha"},
		{ID: 3, Name: "Gamma", ParentID: SomeID(1)},
	}

	tests := []struct {
		name    string
		column  Column
		current SortState
		want    []string
	}{
		{
			name:   "id descending on first click",
			column: ColumnID,
			want:   []string{"Gamma", "Beta", "Alpha"},
		},
		{
			name:    "id ascending on second click",
			column:  ColumnID,
			current: SortState{Column: ColumnID, Direction: Descending, Applied: true},
			want:    []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name:    "name ascending",
			column:  ColumnName,
			current: SortState{Column: ColumnName, Direction: Descending, Applied: true},
			want:    []string{"Alpha", "Beta", "Gamma"},
		},
		// Absent parent IDs sort as 0, so Alpha comes first
		// ascending; Beta stays before Gamma because equal keys
		// keep their as-read order.
		{
			name:    "parent id ascending with absent as zero",
			column:  ColumnParentID,
			current: SortState{Column: ColumnParentID, Direction: Descending, Applied: true},
			want:    []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name:   "parent id descending keeps equal keys stable",
			column: ColumnParentID,
			want:   []string{"Beta", "Gamma", "Alpha"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplySort(records, tt.column, tt.current)
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Errorf("order = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestApplySort_Stability(t *testing.T) {
	// All records share the same parent; sorting by it must keep
	// the as-read order on both directions.
	records := []Record{
		{ID: 9, Name: "first", ParentID: SomeID(5)},
		{ID: 3, Name: "second", ParentID: SomeID(5)},
		{ID: 7, Name: "third", ParentID: SomeID(5)},
	}

	desc, state := ApplySort(records, ColumnParentID, SortState{})
	if got := names(desc); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("descending equal keys = %v, want as-read order", got)
	}

	asc, _ := ApplySort(desc, ColumnParentID, state)
	if got := names(asc); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("ascending equal keys = %v, want as-read order", got)
	}
}

func TestApplySort_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		{ID: 2, Name: "Beta"},
		{ID: 1, Name: "Alpha"},
	}

	ApplySort(records, ColumnID, SortState{})
	if records[0].Name != "Beta" || records[1].Name != "Alpha" {
		t.Errorf("input mutated: %+v", records)
	}
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in      string
		want    Column
		wantErr bool
	}{
		{in: "id", want: ColumnID},
		{in: "name", want: ColumnName},
		{in: "parentId", want: ColumnParentID},
		{in: "parent_id", want: ColumnParentID},
		{in: "PARENTID", want: ColumnParentID},
		{in: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseColumn(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColumn(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColumn(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
