// Package requestid assigns the X-Request-ID carried by every response.
package requestid

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	// Header is read from requests and always set on responses
	Header = "X-Request-ID"
	// MaxLength caps honoured IDs at UUID length
	MaxLength = 36
)

var (
	// sanitizeRegex removes all characters except a-z, A-Z, 0-9, and hyphens
	sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	// consecutiveHyphensRegex matches one or more consecutive hyphens
	consecutiveHyphensRegex = regexp.MustCompile(`-+`)
)

// Resolve returns the sanitized incoming ID, or a new UUID when nothing
// usable is left after sanitizing.
func Resolve(incoming string) string {
	if id := Sanitize(incoming); id != "" {
		return id
	}
	return uuid.New().String()
}

// Sanitize keeps [a-zA-Z0-9-], turns spaces into hyphens, collapses hyphen
// runs, trims outer hyphens and truncates to MaxLength.
func Sanitize(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "-")
	s = sanitizeRegex.ReplaceAllString(s, "")
	s = consecutiveHyphensRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}

// Assign resolves the request ID for ctx and sets it on the response.
func Assign(ctx *fasthttp.RequestCtx) string {
	id := Resolve(string(ctx.Request.Header.Peek(Header)))
	ctx.Response.Header.Set(Header, id)
	return id
}
