package fetcher

import "fmt"

// InvalidURLError is returned when the input cannot be parsed as an absolute
// URL. No network I/O has happened.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// FetchError is returned when the origin could not be retrieved: network
// failure, timeout, non-2xx status or an oversized body.
type FetchError struct {
	URL string
	// StatusCode is the origin status, zero when no response arrived.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Cause is the underlying failure text, suitable for clients.
func (e *FetchError) Cause() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}
