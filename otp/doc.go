// Package otp stores short-lived numeric one-time passwords in a cache,
// one live code per identifier, with optional master-code override for
// controlled environments.
package otp
