package tenant

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// RemoteError is a non-2xx response from the tenant. Detail holds the raw
// response body when the tenant returned one; valid JSON bodies are kept
// verbatim so callers can pass them through to their own clients.
type RemoteError struct {
	StatusCode int
	Detail     json.RawMessage
}

func newRemoteError(statusCode int, body []byte) *RemoteError {
	e := &RemoteError{StatusCode: statusCode}
	if json.Valid(body) && len(body) > 0 {
		e.Detail = json.RawMessage(body)
	}
	return e
}

func (e *RemoteError) Error() string {
	if len(e.Detail) > 0 {
		return fmt.Sprintf("tenant: HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("tenant: HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}
