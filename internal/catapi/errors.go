package catapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindInvalidRequest means the call was rejected before anything was sent.
	KindInvalidRequest
	// KindTransport covers DNS, connection and timeout failures.
	KindTransport
	// KindHTTPStatus means the server answered outside the 2xx range.
	KindHTTPStatus
	// KindDecode means the body did not match the expected shape.
	KindDecode
	// KindNoData means an empty body arrived where bytes were expected.
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindTransport:
		return "transport failure"
	case KindHTTPStatus:
		return "http status"
	case KindDecode:
		return "decode failure"
	case KindNoData:
		return "no data"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind   Kind
	Op     string // request path or URL
	Status int    // set for KindHTTPStatus
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Kind == KindHTTPStatus {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Display returns a short message suitable for a status line.
func (e *Error) Display() string {
	switch e.Kind {
	case KindInvalidRequest:
		return "Invalid request"
	case KindTransport:
		msg := "Network unavailable"
		if e.Err != nil {
			text := e.Err.Error()
			switch {
			case strings.Contains(text, "Client.Timeout"), strings.Contains(text, "deadline exceeded"):
				msg = "Request timed out"
			case strings.Contains(text, "no such host"):
				msg = "Host not found"
			case strings.Contains(text, "connection refused"):
				msg = "Connection refused"
			}
		}
		return msg
	case KindHTTPStatus:
		text := http.StatusText(e.Status)
		if text == "" {
			return fmt.Sprintf("HTTP %d", e.Status)
		}
		return fmt.Sprintf("HTTP %d %s", e.Status, text)
	case KindDecode:
		return "Unexpected response from server"
	case KindNoData:
		return "Server sent no data"
	default:
		return "Request failed"
	}
}

// KindOf reports the Kind of err, or KindUnknown when err was not produced here.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTPStatus {
		return apiErr.Status
	}
	return 0
}

// Message renders any error for display, preferring Error.Display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Display()
	}
	return err.Error()
}

func invalidRequest(op string, err error) error {
	return &Error{Kind: KindInvalidRequest, Op: op, Err: err}
}

func transportFailure(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func httpStatus(op string, code int) error {
	return &Error{Kind: KindHTTPStatus, Op: op, Status: code}
}

func decodeFailure(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

func noData(op string) error {
	return &Error{Kind: KindNoData, Op: op}
}
