package events

import "time"

// RequestEvent is one line of the request event log
type RequestEvent struct {
	// Identifiers
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	URLHash   string `json:"url_hash"`
	FinalURL  string `json:"final_url,omitempty"`

	// Request metadata
	EventType string `json:"event_type"` // rewrite, error
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`

	// Response
	StatusCode   int     `json:"status_code"`
	Title        string  `json:"title,omitempty"`
	PageSize     int     `json:"page_size"`     // rewritten bytes returned
	FetchSize    int     `json:"fetch_size"`    // decoded origin bytes
	ServeTime    float64 `json:"serve_time"`    // seconds
	FetchTime    float64 `json:"fetch_time"`    // seconds
	OriginStatus int     `json:"origin_status"` // zero when the origin never answered

	// Rewrite counts
	RewrittenTextNodes int `json:"rewritten_text_nodes"`
	RewrittenElements  int `json:"rewritten_elements"`

	// Error info
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Timestamps
	CreatedAt  time.Time `json:"created_at"`
	InstanceID string    `json:"instance_id"`
}
