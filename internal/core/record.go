package core

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// NullID is an optional numeric identifier. The zero value is "absent".
type NullID struct {
	Int64 int64
	Valid bool
}

// SomeID returns a present NullID holding v.
func SomeID(v int64) NullID {
	return NullID{Int64: v, Valid: true}
}

// String renders the ID, or the empty string when absent.
func (n NullID) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

// Record is one successfully decoded CSV data row. Records only come out
// of Decode; a partially decoded row is never observable.
type Record struct {
	ID       int64
	Name     string
	ParentID NullID
}

// EncodeCSV renders records back to CSV text with the canonical header.
// An absent parent ID becomes an empty field, so the output round-trips
// through Decode to an equal record list.
func EncodeCSV(records []Record) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "name", "parentId"})
	for _, r := range records {
		_ = w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.ParentID.String(),
		})
	}
	w.Flush()
	return b.String()
}
