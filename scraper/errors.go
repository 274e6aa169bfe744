package scraper

import (
	"errors"
	"fmt"

	"github.com/harwood/go-scrape-listings/parser"
)

var (
	// ErrNoWork is returned when Run is given an empty URL set.
	ErrNoWork = errors.New("no URLs given")

	// ErrInvalidConcurrency is returned when the clamped worker count falls
	// outside the allowed range.
	ErrInvalidConcurrency = errors.New("invalid number of concurrent connections")
)

// MalformedURLError indicates a target URL that cannot be fetched at all,
// such as a missing or unsupported scheme.
type MalformedURLError struct {
	URL string
	Err error
}

func (e MalformedURLError) Error() string {
	return fmt.Sprintf("malformed url %q: %v", e.URL, e.Err)
}

func (e MalformedURLError) Unwrap() error {
	return e.Err
}

// FetchError indicates a transport-level failure for one URL.
type FetchError struct {
	URL string
	Err error
}

func (e FetchError) Error() string {
	return fmt.Errorf("fetch %s: %w", e.URL, e.Err).Error()
}

func (e FetchError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var throttled parser.ThrottledError
	if errors.As(err, &throttled) {
		return "throttled"
	}
	var extraction parser.ExtractionError
	if errors.As(err, &extraction) {
		return "extraction_failed"
	}
	var missing parser.FieldMissingError
	if errors.As(err, &missing) {
		return "field_missing"
	}
	var malformed MalformedURLError
	if errors.As(err, &malformed) {
		return "malformed_url"
	}
	var fetch FetchError
	if errors.As(err, &fetch) {
		return "fetch_failed"
	}
	return "other"
}
