package events

import "time"

// CoercionStart is emitted before an operation's variables and arguments are
// coerced.
type CoercionStart struct {
	OperationName string
	OperationType string
	Variables     int
}

// CoercionFinish is emitted after coercion. Violations counts the reported
// input violations; Err is set when coercion could not run at all.
type CoercionFinish struct {
	OperationName string
	OperationType string
	Violations    int
	Err           error
	Duration      time.Duration
}
