package core

import (
	"fmt"
	"strings"
)

// DefaultMaxFileSize is the upload size cap in bytes. Files above this
// are rejected before any content is read.
const DefaultMaxFileSize int64 = 400_000

// CSVContentType is the only declared content type accepted for upload.
const CSVContentType = "text/csv"

// FileMeta describes a candidate file before its content is read.
type FileMeta struct {
	Name        string
	Size        int64
	ContentType string
}

// RejectReason says why a candidate file was refused.
type RejectReason int

const (
	// ReasonTooBig means the file exceeds the size cap.
	ReasonTooBig RejectReason = iota
	// ReasonNotCSV means the declared content type is not text/csv.
	ReasonNotCSV
)

func (r RejectReason) String() string {
	switch r {
	case ReasonTooBig:
		return "file too large"
	case ReasonNotCSV:
		return "not a CSV file"
	default:
		return "rejected"
	}
}

// Rejection is the error returned when a file fails pre-read validation.
// It carries the offending metadata so callers can render a specific
// message without re-inspecting the file.
type Rejection struct {
	Reason      RejectReason
	Size        int64
	ContentType string
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonTooBig:
		return fmt.Sprintf("file too large: %d bytes", r.Size)
	case ReasonNotCSV:
		return fmt.Sprintf("not a CSV file: declared type %q", r.ContentType)
	default:
		return "file rejected"
	}
}

// Validator gates candidate files on size and declared content type
// before any read is attempted. It is synchronous and side-effect free.
type Validator struct {
	maxSize int64
}

// NewValidator returns a Validator with the given size cap.
// A non-positive cap falls back to DefaultMaxFileSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize reports the active size cap in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate accepts or rejects a candidate file. Size is checked before
// content type, so an oversized non-CSV file reports ReasonTooBig.
func (v *Validator) Validate(meta FileMeta) error {
	if meta.Size > v.maxSize {
		return &Rejection{Reason: ReasonTooBig, Size: meta.Size, ContentType: meta.ContentType}
	}
	if strings.TrimSpace(meta.ContentType) != CSVContentType {
		return &Rejection{Reason: ReasonNotCSV, Size: meta.Size, ContentType: meta.ContentType}
	}
	return nil
}
