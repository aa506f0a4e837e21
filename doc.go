// Package goAuthKit provides a multi-tenant-friendly authentication backend:
// JWT token triples (access, session, refresh) sharing one session ID,
// Redis-backed blacklist revocation, OTP login, and database-backed
// group/permission RBAC with a super-admin bypass.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goAuthKit is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, Principal, MetricsSnapshot, etc.). Internal
// coordination — rate limiting, audit dispatch — lives under internal/ and is
// never exported. Token minting, revocation, OTP, password hashing, and
// permission resolution live in the jwt, revoke, otp, password, and permission
// sub-packages; the Engine orchestrates them.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or key layouts in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goAuthKit (no import cycles).
//
// # Failure posture
//
// Revocation reads fail open: an unreachable cache admits tokens rather than
// locking every user out. Revocation writes fail closed: an operation whose
// security depends on a blacklist write (refresh rotation, logout-all,
// password change) reports the failure instead of pretending it happened.
package goAuthKit
