// Package jwt mints and verifies the access, session, and refresh tokens issued
// together on every authentication event. The three tokens share one session ID
// and subject; the session token additionally embeds a user profile snapshot
// and permission list. Verification enforces signing algorithm, issuer, and
// audience, with a fallback parse for tokens minted before the audience claim
// was introduced.
package jwt
