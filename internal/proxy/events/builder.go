package events

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Event type constants
const (
	EventTypeRewrite = "rewrite"
	EventTypeError   = "error"
)

// Error type constants, shared with the errors_total metric
const (
	ErrorTypeMissingURL  = "missing_url"
	ErrorTypeInvalidURL  = "invalid_url"
	ErrorTypeFetch       = "fetch_error"
	ErrorTypeInvalidBody = "invalid_body"
	ErrorTypeInternal    = "internal_error"
)

// RequestInfo carries request-side fields known before processing
type RequestInfo struct {
	RequestID string
	URL       string
	ClientIP  string
	UserAgent string
	StartedAt time.Time
}

// Outcome carries what processing produced. Zero values are fine for
// requests that failed before reaching the origin.
type Outcome struct {
	StatusCode         int
	FinalURL           string
	Title              string
	PageSize           int
	FetchSize          int
	FetchTime          time.Duration
	OriginStatus       int
	RewrittenTextNodes int
	RewrittenElements  int
	ErrorType          string
	ErrorMessage       string
}

// BuildRequestEvent assembles a RequestEvent. Requests with an ErrorType
// become error events.
func BuildRequestEvent(info RequestInfo, out Outcome, instanceID string) *RequestEvent {
	now := time.Now().UTC()

	event := &RequestEvent{
		RequestID:          info.RequestID,
		URL:                info.URL,
		ClientIP:           info.ClientIP,
		UserAgent:          info.UserAgent,
		EventType:          EventTypeRewrite,
		StatusCode:         out.StatusCode,
		FinalURL:           out.FinalURL,
		Title:              out.Title,
		PageSize:           out.PageSize,
		FetchSize:          out.FetchSize,
		FetchTime:          out.FetchTime.Seconds(),
		OriginStatus:       out.OriginStatus,
		RewrittenTextNodes: out.RewrittenTextNodes,
		RewrittenElements:  out.RewrittenElements,
		ErrorType:          out.ErrorType,
		ErrorMessage:       out.ErrorMessage,
		CreatedAt:          now,
		InstanceID:         instanceID,
	}

	if info.URL != "" {
		event.URLHash = HashURL(info.URL)
	}
	if !info.StartedAt.IsZero() {
		event.ServeTime = now.Sub(info.StartedAt).Seconds()
	}
	if out.ErrorType != "" {
		event.EventType = EventTypeError
	}

	return event
}

// HashURL returns the XXHash64 of rawURL as 16 hex digits
func HashURL(rawURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(rawURL))
}
