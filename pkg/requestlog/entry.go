package requestlog

import "time"

// Entry captures one served request and the response sent for it.
type Entry struct {
	// ID is a unique identifier, assigned by the store when empty.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	Method      string              `json:"method"`
	Path        string              `json:"path"`
	QueryString string              `json:"queryString,omitempty"`
	Headers     map[string][]string `json:"headers,omitempty"`
	Body        string              `json:"body,omitempty"`
	RemoteAddr  string              `json:"remoteAddr,omitempty"`

	// Outcome is how the plan resolved the request (for example "matched #0",
	// "unmatched", "exhausted"), or empty when no plan saw it.
	Outcome string `json:"outcome,omitempty"`

	ResponseStatus int    `json:"responseStatus"`
	ResponseBody   string `json:"responseBody,omitempty"`

	// DurationMs is the processing time including any response delay.
	DurationMs int `json:"durationMs"`

	// Error is set when the exchange failed, for example an interrupted delay.
	Error string `json:"error,omitempty"`
}
