package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	input := "id,name,parentId\n1,Alpha,\n2,Beta,1\n3,Gamma,1\n"

	got, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []Record{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Beta", ParentID: SomeID(1)},
		{ID: 3, Name: "Gamma", ParentID: SomeID(1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRow    int
		wantField  int
		wantReason DecodeReason
	}{
		{
			name:       "non-numeric id",
			input:      "id,name,parentId\nX,Alpha,\n",
			wantRow:    0,
			wantField:  0,
			wantReason: ReasonNotAnInt,
		},
		{
			name:       "non-numeric parent id",
			input:      "id,name,parentId\n1,Alpha,\n2,Beta,zzz\n",
			wantRow:    1,
			wantField:  2,
			wantReason: ReasonNotAnInt,
		},
		{
			name:       "row with only an id",
			input:      "id,name,parentId\n1\n",
			wantRow:    0,
			wantField:  1,
			wantReason: ReasonMissingField,
		},
		{
			name:       "row with too many fields",
			input:      "id,name,parentId\n1,Alpha,,extra\n",
			wantRow:    0,
			wantField:  3,
			wantReason: ReasonTooManyFields,
		},
		{
			name:       "malformed quoting",
			input:      "id,name,parentId\n1,\"Alp\"ha,\n",
			wantRow:    0,
			wantField:  -1,
			wantReason: ReasonBadQuoting,
		},
		// Decoding stops at the first failing row: the bad row 1
		// wins even though row 2 is also invalid.
		{
			name:       "fail fast on first bad row",
			input:      "id,name,parentId\n1,Alpha,\nX,Beta,\nY,Gamma,\n",
			wantRow:    1,
			wantField:  0,
			wantReason: ReasonNotAnInt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode(tt.input)
			if records != nil {
				t.Errorf("Decode() records = %+v, want nil on error", records)
			}

			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
			if derr.Row != tt.wantRow || derr.Field != tt.wantField || derr.Reason != tt.wantReason {
				t.Errorf("DecodeError = {Row:%d Field:%d Reason:%v}, want {Row:%d Field:%d Reason:%v}",
					derr.Row, derr.Field, derr.Reason, tt.wantRow, tt.wantField, tt.wantReason)
			}
		})
	}
}

func TestDecode_Quoting(t *testing.T) {
	// RFC-4180: quoted fields may hold the delimiter, embedded
	// newlines, and doubled quotes for a literal quote.
	input := "id,name,parentId\n1,\"Smith, Jane\",\n2,\"line\nbreak\",1\n3,\"say \"\"hi\"\"\",\n"

	got, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []Record{
		{ID: 1, Name: "Smith, Jane"},
		{ID: 2, Name: "line\nbreak", ParentID: SomeID(1)},
		{ID: 3, Name: `say "hi"`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_EmptyAndHeaderOnly(t *testing.T) {
	if _, err := Decode(""); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Decode(empty) error = %v, want ErrEmptyFile", err)
	}
	if _, err := Decode("   \n  "); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Decode(blank) error = %v, want ErrEmptyFile", err)
	}

	got, err := Decode("id,name,parentId\n")
	if err != nil {
		t.Fatalf("Decode(header only) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Decode(header only) = %+v, want no records", got)
	}
}

func TestDecode_EmptyNameAllowed(t *testing.T) {
	got, err := Decode("id,name,parentId\n7,,\n")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []Record{{ID: 7, Name: ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_TwoFieldRowParentAbsent(t *testing.T) {
	// parentId is optional as a field, not just as a value.
	got, err := Decode("id,name,parentId\n5,Solo\n")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 1 || got[0].ParentID.Valid {
		t.Errorf("Decode() = %+v, want one record with absent parent", got)
	}
}

func TestDecode_Idempotent(t *testing.T) {
	input := "id,name,parentId\n1,Alpha,\n2,Beta,1\n"

	first, err1 := Decode(input)
	second, err2 := Decode(input)
	if err1 != nil || err2 != nil {
		t.Fatalf("Decode() errors = %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Decode() not idempotent: %+v vs %+v", first, second)
	}
}

func TestEncodeCSV_RoundTrip(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Smith, Jane", ParentID: SomeID(1)},
		{ID: 3, Name: `say "hi"`, ParentID: SomeID(1)},
		{ID: 4, Name: ""},
	}

	decoded, err := Decode(EncodeCSV(records))
	if err != nil {
		t.Fatalf("Decode(EncodeCSV()) error = %v", err)
	}
	if !reflect.DeepEqual(decoded, records) {
		t.Errorf("round trip = %+v, want %+v", decoded, records)
	}
}
