// Package cache provides the key-value store surface used by the
// revocation and OTP subsystems: Redis semantics (get/set-with-TTL/delete)
// behind a small [Store] interface, with a Redis implementation, an
// in-process implementation for tests, and a degrading wrapper that falls
// back to the in-process store when Redis is unreachable.
package cache
