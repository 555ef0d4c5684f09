package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the coercion endpoint receives a request.
// The publishing context carries the request ID.
type HTTPStart struct {
	Request   *http.Request
	RequestID int64
}

// HTTPFinish is emitted after the response has been written.
type HTTPFinish struct {
	Request   *http.Request
	RequestID int64
	Status    int
	Duration  time.Duration
}
