package gateway

import "fmt"

// TransportError means the remote service could not be reached or answered
// with a non-2xx status. StatusCode is zero when no response arrived.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means the remote answered but a required field
// was missing or the body could not be decoded.
type MalformedResponseError struct {
	Op     string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

// RemoteFailureError means a generation job settled into the failed state.
type RemoteFailureError struct {
	JobID  string
	Reason string
}

func (e *RemoteFailureError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("generation %s failed", e.JobID)
	}
	return fmt.Sprintf("generation %s failed: %s", e.JobID, e.Reason)
}
