// Package middleware exposes HTTP middleware adapters built on top of
// goAuthKit.Engine request authentication.
//
// # Guards
//
//   - [Authenticate] — token extraction, validation, revocation checks; injects the principal.
//   - [RequirePermissions] — RBAC check over the injected principal.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the Engine).
//   - Access Redis (the Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine calls.
package middleware
