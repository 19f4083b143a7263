package httpwire

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	// MaxLineBytes bounds a single request or header line, terminator included.
	MaxLineBytes = 8 << 10
	// MaxHeaders bounds the number of header lines in one request.
	MaxHeaders = 100
)

// Header is a single name/value pair as it appeared on the wire.
type Header struct {
	Name  string
	Value string
}

// Headers keeps declaration order and duplicates.
type Headers []Header

// Get returns the value of the first header whose name matches exactly.
func (h Headers) Get(name string) (string, bool) {
	for _, header := range h {
		if header.Name == name {
			return header.Value, true
		}
	}
	return "", false
}

// Request is a parsed request head. It lives for one connection only.
type Request struct {
	Verb    Verb
	Path    string
	Headers Headers

	// RemoteAddr and ConnID are filled in by the server engine.
	RemoteAddr string
	ConnID     string
}

// ReadRequest parses a request line and header block from r. The body, if
// any, is left unread in r.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, Malformed("connection closed before request line")
	}

	// The terminator stays on the last token; only the first two matter.
	tokens := strings.Split(line, " ")
	verb, err := ParseVerb(tokens[0])
	if err != nil {
		return nil, err
	}
	if len(tokens) < 2 {
		return nil, Malformed("request line has no path")
	}

	req := &Request{
		Verb: verb,
		Path: tokens[1],
	}

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, Malformed("connection closed before end of headers")
		}
		if line == "\r\n" {
			break
		}
		if len(req.Headers) >= MaxHeaders {
			return nil, Malformed("more than %d header lines", MaxHeaders)
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, Malformed("header line without separator")
		}
		value, ok = strings.CutSuffix(value, "\r\n")
		if !ok {
			return nil, Malformed("header %q is not CRLF terminated", name)
		}

		req.Headers = append(req.Headers, Header{Name: name, Value: value})
	}

	return req, nil
}

// readLine reads through the next '\n'. An empty result with a nil error
// means the stream closed before any byte arrived. A final fragment without
// a newline is returned as-is so callers can reject the missing terminator.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > MaxLineBytes {
			return "", Malformed("line exceeds %d bytes", MaxLineBytes)
		}

		switch {
		case err == nil:
			return string(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return string(line), nil
		default:
			return "", err
		}
	}
}
