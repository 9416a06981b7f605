package model

import "time"

// StatusRequest records exactly what was sent for a liveness probe, so the
// console can show the full request on demand.
type StatusRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

// StatusResult is the normalized outcome of one liveness probe. Every probe
// reduces to a value of this type: HTTP failures become non-200 statuses,
// transport failures become status 0 with Error set. Response holds the
// parsed JSON body when the endpoint returned JSON, the raw text otherwise,
// or nil when the body was unreadable.
type StatusResult struct {
	AccountID string        `json:"accountId"`
	Status    int           `json:"status"`
	IsOnline  bool          `json:"isOnline"`
	Request   StatusRequest `json:"request"`
	Response  any           `json:"response"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
