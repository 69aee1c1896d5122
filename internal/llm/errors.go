package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTruncated means the reply hit the token limit before it ended.
	ErrTruncated = errors.New("llm: reply truncated at the token limit")

	// ErrEmptyReply means the backend answered with no text.
	ErrEmptyReply = errors.New("llm: empty reply")
)

// APIError is a failed call to a vendor API. Status is zero when the
// request never got an HTTP response.
type APIError struct {
	Provider string
	Status   int
	Err      error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Transient reports whether the same request may succeed later.
func (e *APIError) Transient() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ReplyError is a reply that is not valid JSON or does not match the schema.
type ReplyError struct {
	Raw json.RawMessage
	Err error
}

func (e *ReplyError) Error() string { return "llm: unusable reply: " + e.Err.Error() }

func (e *ReplyError) Unwrap() error { return e.Err }
