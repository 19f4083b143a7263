// Package server implements the inbound side of the interactbox HTTP engine.
//
// This package provides:
//   - A raw TCP accept loop with one worker goroutine per connection
//   - Bounded admission (x/net LimitListener) and per-IP rate limiting
//   - Exact-path routing to Handler implementations
//   - Mapping of classified handler failures to a bare 401 status line
//   - Ed25519 verification of signed webhook deliveries
//
// Connections carry exactly one request. Every read on a connection is
// subject to an idle deadline; a request that stalls surfaces as a timeout
// and is answered with 401 like any other classified failure. Unclassified
// failures close the connection without writing anything.
//
// Handlers must call Verifier.Verify on the raw body before decoding it.
// The engine does not enforce that ordering.
package server
