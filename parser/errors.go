package parser

import "fmt"

// ThrottledError signals that the expected bootstrap payload position was
// not found in the page markup. The source site is rate-limiting or has
// changed its layout, so the whole run must stop rather than emit garbage.
type ThrottledError struct {
	Found int
	Want  int
}

func (e ThrottledError) Error() string {
	return fmt.Sprintf("throttled: found %d json script blocks, want at least %d", e.Found, e.Want)
}

// ExtractionError indicates the payload block was present but could not be
// decoded.
type ExtractionError struct {
	Err error
}

func (e ExtractionError) Error() string {
	return fmt.Errorf("extract payload: %w", e.Err).Error()
}

func (e ExtractionError) Unwrap() error {
	return e.Err
}

// FieldMissingError indicates the decoded payload lacks a required listing
// field. The affected URL is skipped; the run continues.
type FieldMissingError struct {
	Field string
}

func (e FieldMissingError) Error() string {
	return fmt.Sprintf("listing payload missing field %q", e.Field)
}
