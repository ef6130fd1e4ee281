// Package core implements the CSV upload pipeline: gating a candidate
// file on size and declared content type, decoding raw CSV text into
// typed records, reordering records for display, and the per-session
// state machine that ties those steps together.
//
// The package has no UI dependencies and can be driven by any frontend.
// Validate, Decode and ApplySort are pure and reentrant; all mutable
// state lives inside Session, which processes one intent at a time on a
// single goroutine.
package core
