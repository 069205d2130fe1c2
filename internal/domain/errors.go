package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownParser is returned when a venue names a strategy nobody registered.
var ErrUnknownParser = errors.New("parser is not registered")

// FetchError reports a network or status failure for one source.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed (%d) for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch failed for %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ParseError reports a page or value that could not be read.
type ParseError struct {
	Parser string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Parser == "" {
		return fmt.Sprintf("parse: %v", e.Cause)
	}
	return fmt.Sprintf("parse %s: %v", e.Parser, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// SerializationError reports a failure writing the output document. It is fatal.
type SerializationError struct {
	Path  string
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }
