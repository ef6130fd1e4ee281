package core

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	v := NewValidator(0) // default 400,000-byte cap

	tests := []struct {
		name        string
		size        int64
		contentType string
		wantReason  RejectReason
		wantOK      bool
	}{
		{
			name:        "small csv accepted",
			size:        1024,
			contentType: "text/csv",
			wantOK:      true,
		},
		{
			name:        "exactly at cap accepted",
			size:        400_000,
			contentType: "text/csv",
			wantOK:      true,
		},
		{
			name:        "one byte over cap rejected",
			size:        400_001,
			contentType: "text/csv",
			wantReason:  ReasonTooBig,
		},
		{
			name:        "large csv rejected as too big",
			size:        500_000,
			contentType: "text/csv",
			wantReason:  ReasonTooBig,
		},
		{
			name:        "wrong type rejected",
			size:        1024,
			contentType: "application/json",
			wantReason:  ReasonNotCSV,
		},
		{
			name:        "empty type rejected",
			size:        1024,
			contentType: "",
			wantReason:  ReasonNotCSV,
		},
		// Size is checked before type: an oversized non-CSV file
		// must be reported as too big, not as the wrong type.
		{
			name:        "oversized non-csv reports too big",
			size:        500_000,
			contentType: "application/pdf",
			wantReason:  ReasonTooBig,
		},
		{
			name:        "type with charset parameter rejected",
			size:        1024,
			contentType: "text/csv; charset=utf-8",
			wantReason:  ReasonNotCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(FileMeta{Name: "data.csv", Size: tt.size, ContentType: tt.contentType})

			if tt.wantOK {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var rej *Rejection
			if !errors.As(err, &rej) {
				t.Fatalf("Validate() error = %v, want *Rejection", err)
			}
			if rej.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", rej.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidate_CustomCap(t *testing.T) {
	v := NewValidator(100)

	if err := v.Validate(FileMeta{Size: 100, ContentType: "text/csv"}); err != nil {
		t.Errorf("Validate(100 bytes) error = %v, want nil", err)
	}

	err := v.Validate(FileMeta{Size: 101, ContentType: "text/csv"})
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Reason != ReasonTooBig {
		t.Errorf("Validate(101 bytes) = %v, want TooBig rejection", err)
	}
}

func TestRejection_Error(t *testing.T) {
	tooBig := &Rejection{Reason: ReasonTooBig, Size: 500_000}
	if got := tooBig.Error(); got != "file too large: 500000 bytes" {
		t.Errorf("Error() = %q", got)
	}

	notCSV := &Rejection{Reason: ReasonNotCSV, ContentType: "text/plain"}
	if got := notCSV.Error(); got != `not a CSV file: declared type "text/plain"` {
		t.Errorf("Error() = %q", got)
	}
}
