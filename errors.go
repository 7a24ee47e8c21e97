package jsonsuggest

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failures.

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	// Usually means you forgot to import the provider package with an underscore.
	ErrProviderNotFound = errors.New("suggest provider not found")

	// ErrNoSource is returned when neither inline data nor a remote provider is configured.
	ErrNoSource = errors.New("no data source configured")

	// ErrIndexOutOfRange is returned when a pointer event names a result that does not exist.
	ErrIndexOutOfRange = errors.New("result index out of range")

	// ErrClosed is returned by operations on a closed widget.
	ErrClosed = errors.New("widget closed")

	// ErrFetchTimeout is reported when a remote search does not answer within FetchTimeout.
	ErrFetchTimeout = errors.New("remote search timed out")
)

// ParseError reports an inline dataset that could not be decoded.
type ParseError struct {
	// Source names where the data came from, e.g. "data" or a config file path.
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse inline data: %v", e.Err)
	}
	return fmt.Sprintf("parse inline data from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func errUnsupportedData(v any) error {
	return fmt.Errorf("unsupported data type %T", v)
}
