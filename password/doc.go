// Package password implements password hashing and verification with bcrypt.
//
// # Output format
//
// New hashes use the standard bcrypt modular crypt encoding ("$2a$..." /
// "$2b$..."). Legacy Django-style "pbkdf2_sha256$iterations$salt$digest"
// hashes verify but are never written; [Hasher.NeedsUpgrade] reports true
// for them so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// reuse) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other goAuthKit package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
