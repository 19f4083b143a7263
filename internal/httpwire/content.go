package httpwire

import (
	"fmt"
	"io"
	"strconv"
)

const (
	ContentLengthHeader = "Content-Length"

	// MaxContentLength is the largest body ReadContent accepts.
	MaxContentLength = 1_000_000 // 1 MB
)

// ReadContent reads exactly the number of bytes declared by the request's
// Content-Length header. A zero length never touches r.
func ReadContent(req *Request, r io.Reader) ([]byte, error) {
	raw, ok := req.Headers.Get(ContentLengthHeader)
	if !ok {
		return nil, Malformed("missing %s header", ContentLengthHeader)
	}

	length, err := strconv.ParseUint(raw, 10, 63)
	if err != nil {
		return nil, Malformed("invalid %s %q", ContentLengthHeader, raw)
	}
	if length > MaxContentLength {
		return nil, Malformed("%s %d exceeds limit of %d", ContentLengthHeader, length, MaxContentLength)
	}

	content := make([]byte, length)
	if length == 0 {
		return content, nil
	}

	if _, err := io.ReadFull(r, content); err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	return content, nil
}
