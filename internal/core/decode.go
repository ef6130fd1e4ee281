package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned by Decode for input with no content at all.
var ErrEmptyFile = errors.New("empty file")

// DecodeReason classifies why a row failed to decode.
type DecodeReason int

const (
	// ReasonNotAnInt means a numeric field did not parse as an integer.
	ReasonNotAnInt DecodeReason = iota
	// ReasonMissingField means a row is too short for a required field.
	ReasonMissingField
	// ReasonTooManyFields means a row has more fields than the record shape.
	ReasonTooManyFields
	// ReasonBadQuoting means CSV tokenization failed (malformed quoting).
	ReasonBadQuoting
)

func (r DecodeReason) String() string {
	switch r {
	case ReasonNotAnInt:
		return "not an integer"
	case ReasonMissingField:
		return "missing field"
	case ReasonTooManyFields:
		return "too many fields"
	case ReasonBadQuoting:
		return "malformed quoting"
	default:
		return "decode failure"
	}
}

// DecodeError reports the first failing row of a decode attempt.
// Row is the 0-based data-row index (the header does not count).
// Field is the 0-based field index, or -1 when tokenization itself
// failed and no field position is meaningful.
type DecodeError struct {
	Row    int
	Field  int
	Reason DecodeReason
	Value  string // offending raw field value, when one exists
}

func (e *DecodeError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("row %d, field %d: %s (%q)", e.Row, e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("row %d, field %d: %s", e.Row, e.Field, e.Reason)
}

// fieldRule is one positional decode rule. Adding a column to the record
// shape means adding a rule here, not touching Decode's control flow.
type fieldRule struct {
	name     string
	required bool
	assign   func(r *Record, raw string) *DecodeError
}

// recordRules decodes the fixed (id, name, parentId) shape positionally.
// Header names are not consulted.
var recordRules = []fieldRule{
	{
		name:     "id",
		required: true,
		assign: func(r *Record, raw string) *DecodeError {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return &DecodeError{Reason: ReasonNotAnInt, Value: raw}
			}
			r.ID = id
			return nil
		},
	},
	{
		name:     "name",
		required: true,
		assign: func(r *Record, raw string) *DecodeError {
			r.Name = raw
			return nil
		},
	},
	{
		name: "parentId",
		assign: func(r *Record, raw string) *DecodeError {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				r.ParentID = NullID{}
				return nil
			}
			id, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				return &DecodeError{Reason: ReasonNotAnInt, Value: raw}
			}
			r.ParentID = SomeID(id)
			return nil
		},
	},
}

// Decode parses raw CSV text into records. The first line is the header
// and is not validated against expected column names; data rows decode
// positionally per recordRules. Decoding stops at the first failing row
// and returns a *DecodeError for it; there are no partial results.
// Output order matches input order.
func Decode(text string) ([]Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	r := csv.NewReader(strings.NewReader(text))
	// Ragged rows surface as per-field decode errors, not reader errors.
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, tokenizeError(err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	// rows[0] is the header; only its presence matters.
	data := rows[1:]
	records := make([]Record, 0, len(data))
	for i, row := range data {
		rec, derr := decodeRow(row)
		if derr != nil {
			derr.Row = i
			return nil, derr
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeRow applies recordRules to a single tokenized row.
// The caller fills in DecodeError.Row.
func decodeRow(row []string) (Record, *DecodeError) {
	if len(row) > len(recordRules) {
		return Record{}, &DecodeError{Field: len(recordRules), Reason: ReasonTooManyFields}
	}
	var rec Record
	for i, rule := range recordRules {
		if i >= len(row) {
			if rule.required {
				return Record{}, &DecodeError{Field: i, Reason: ReasonMissingField}
			}
			continue
		}
		if derr := rule.assign(&rec, row[i]); derr != nil {
			derr.Field = i
			return Record{}, derr
		}
	}
	return rec, nil
}

// tokenizeError converts an encoding/csv failure into a DecodeError,
// preserving the row position when the reader knows it.
func tokenizeError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		row := pe.Line - 2 // reader lines are 1-based and include the header
		if row < 0 {
			row = 0
		}
		return &DecodeError{Row: row, Field: -1, Reason: ReasonBadQuoting}
	}
	return &DecodeError{Field: -1, Reason: ReasonBadQuoting}
}
