// Package revoke records token, session and user level revocations in a
// cache with TTL, without a session table. A session is considered active
// until a revocation marker covering it exists; markers expire on their
// own once every token they cover has expired.
package revoke
