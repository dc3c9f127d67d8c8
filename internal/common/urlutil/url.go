package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned by ParseAbsolute for a URL without scheme or host.
var ErrNotAbsolute = errors.New("URL must include scheme and host")

// ParseAbsolute parses raw as an absolute URL. Surrounding whitespace is
// ignored. The scheme is lowercased; any scheme is accepted here, the
// fetcher decides what it can speak.
func ParseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotAbsolute, raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// IsHTTP reports whether u uses http or https.
func IsHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}
