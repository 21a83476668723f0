package internal

import "fmt"

// APIError represents a non-success response from the negotiation backend.
// Detail carries the backend's human-readable message verbatim.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// DecodeError represents a response body that could not be decoded. The raw
// body is kept for diagnosis.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("decode error: %v (body: %q)", e.Err, body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError represents a network-level failure before any response was
// received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
