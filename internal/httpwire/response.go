package httpwire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const (
	StatusLineOK = "HTTP/1.1 200 OK"

	// UnauthorizedResponse is written verbatim for every classified failure.
	UnauthorizedResponse = "HTTP/1.1 401 Unauthorized\r\n\r\n"
)

// IsOK reports whether a raw response starts with the 200 status line.
func IsOK(response []byte) bool {
	return bytes.HasPrefix(response, []byte(StatusLineOK))
}

// StatusLine returns the first line of a raw response without its terminator.
func StatusLine(response []byte) string {
	line, _, _ := bytes.Cut(response, []byte("\r\n"))
	return string(line)
}

// WriteJSON writes a complete 200 response carrying v as JSON.
func WriteJSON(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode response body: %w", err)
	}

	head := fmt.Sprintf("%s\r\nContent-Type: application/json\r\n%s: %d\r\n\r\n",
		StatusLineOK, ContentLengthHeader, len(body))
	if _, err := io.WriteString(w, head); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// WriteUnauthorized writes the bare 401 status line and blank line.
func WriteUnauthorized(w io.Writer) error {
	_, err := io.WriteString(w, UnauthorizedResponse)
	return err
}
