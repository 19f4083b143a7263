package httpwire

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Kind classifies an engine error for the purpose of choosing a response.
type Kind int

const (
	// KindUnclassified covers transport and I/O failures. The server closes
	// the connection without writing anything.
	KindUnclassified Kind = iota
	// KindMalformedRequest covers bad request lines, headers, framing,
	// unknown routes and failed signature checks.
	KindMalformedRequest
	// KindMalformedPayload covers bodies that decode but have the wrong shape.
	KindMalformedPayload
	// KindTimeout covers reads that hit their deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindMalformedRequest:
		return "malformed_request"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindTimeout:
		return "timeout"
	default:
		return "unclassified"
	}
}

// Error is a classified engine error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// Malformed returns a KindMalformedRequest error with a formatted message.
func Malformed(format string, args ...any) error {
	return &Error{Kind: KindMalformedRequest, Err: fmt.Errorf(format, args...)}
}

// MalformedPayload returns a KindMalformedPayload error with a formatted message.
func MalformedPayload(format string, args ...any) error {
	return &Error{Kind: KindMalformedPayload, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the classification of err. Errors carrying an *Error use its
// kind; deadline expiry on a connection is KindTimeout; everything else,
// including nil, is KindUnclassified.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnclassified
	}

	var wireErr *Error
	if errors.As(err, &wireErr) {
		return wireErr.Kind
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	return KindUnclassified
}

// Answerable reports whether the remote peer should receive a 401 for err
// rather than a silent close.
func Answerable(err error) bool {
	return KindOf(err) != KindUnclassified
}
