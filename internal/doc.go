// Package internal contains helper packages that are intentionally private
// to goAuthKit.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public goAuthKit API.
//   - Be imported by any package outside the goAuthKit module.
package internal
