package core

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a failure. The set is closed; every failure surfaced by
// the runtime maps onto exactly one kind.
type ErrorKind string

const (
	// ErrorKindValidation signals missing or malformed tool input. No network
	// call is attempted.
	ErrorKindValidation ErrorKind = "Validation"
	// ErrorKindTimeout signals that the bounded tool timeout expired.
	ErrorKindTimeout ErrorKind = "Timeout"
	// ErrorKindNetwork signals a transport-level failure.
	ErrorKindNetwork ErrorKind = "NetworkError"
	// ErrorKindRemoteRejected signals a non-success status from a backend.
	ErrorKindRemoteRejected ErrorKind = "RemoteRejected"
	// ErrorKindUnexpected covers anything uncategorized inside a tool.
	ErrorKindUnexpected ErrorKind = "Unexpected"
	// ErrorKindUnknownTool signals a dispatch to a name that is not registered.
	ErrorKindUnknownTool ErrorKind = "UnknownTool"
	// ErrorKindLoopLimitExceeded signals that the runtime hit its iteration cap.
	ErrorKindLoopLimitExceeded ErrorKind = "LoopLimitExceeded"
	// ErrorKindInternalFailure covers anything caught at the invocation boundary.
	ErrorKindInternalFailure ErrorKind = "InternalFailure"
)

// ToolResult is the tagged outcome of a tool invocation. It is never an error
// value: failures are data so they can be fed back into the transcript.
type ToolResult struct {
	Success   bool      `json:"success"`
	Payload   any       `json:"payload,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Success creates a successful result carrying payload.
func Success(payload any) ToolResult {
	return ToolResult{Success: true, Payload: payload}
}

// Failure creates a failed result of the given kind.
func Failure(kind ErrorKind, detail string) ToolResult {
	return ToolResult{Success: false, ErrorKind: kind, Detail: detail}
}

// Failuref creates a failed result with a formatted detail.
func Failuref(kind ErrorKind, format string, args ...any) ToolResult {
	return Failure(kind, fmt.Sprintf(format, args...))
}

// String returns the JSON encoding of the result, the form the model sees.
func (r ToolResult) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		fb, _ := json.Marshal(Failure(ErrorKindUnexpected, "unencodable tool payload: "+err.Error()))
		return string(fb)
	}
	return string(b)
}

// Outcome returns "success" or the error kind, for logs and metric labels.
func (r ToolResult) Outcome() string {
	if r.Success {
		return "success"
	}
	return string(r.ErrorKind)
}
