// Package httpwire implements the small subset of HTTP/1.1 framing used by
// interactbox.
//
// This package provides:
//   - The closed Verb enumeration and its text codec
//   - Request-line and header parsing from a raw byte stream
//   - Content-Length delimited body reads
//   - JSON and 401 response framing
//   - The error taxonomy the server engine maps to status lines
//
// Only single-shot exchanges are supported. There is no chunked
// transfer-encoding, no keep-alive, no query-string handling and no
// protocol version negotiation.
package httpwire
