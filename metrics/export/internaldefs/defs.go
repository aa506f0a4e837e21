package internaldefs

import (
	goAuthKit "github.com/MrEthical07/goAuthKit"
)

// CounterDef defines a public type used by goAuthKit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goAuthKit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goAuthKit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goAuthKit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: goAuthKit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Successful login attempts."},
	{ID: goAuthKit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Failed login attempts."},
	{ID: goAuthKit.MetricLoginRateLimited, Name: "authkit_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goAuthKit.MetricOTPRequested, Name: "authkit_otp_requested_total", Help: "Issued one-time passwords."},
	{ID: goAuthKit.MetricOTPRateLimited, Name: "authkit_otp_rate_limited_total", Help: "Rate-limited OTP requests."},
	{ID: goAuthKit.MetricOTPLoginSuccess, Name: "authkit_otp_login_success_total", Help: "Successful OTP logins."},
	{ID: goAuthKit.MetricOTPLoginFailure, Name: "authkit_otp_login_failure_total", Help: "Failed OTP logins."},
	{ID: goAuthKit.MetricOTPInvalid, Name: "authkit_otp_invalid_total", Help: "OTP verifications rejected as invalid."},
	{ID: goAuthKit.MetricSignupSuccess, Name: "authkit_signup_success_total", Help: "Successful signups."},
	{ID: goAuthKit.MetricSignupDuplicate, Name: "authkit_signup_duplicate_total", Help: "Signup attempts rejected as duplicate."},
	{ID: goAuthKit.MetricSignupFailure, Name: "authkit_signup_failure_total", Help: "Failed signups."},
	{ID: goAuthKit.MetricRefreshSuccess, Name: "authkit_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goAuthKit.MetricRefreshFailure, Name: "authkit_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: goAuthKit.MetricRefreshRateLimited, Name: "authkit_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: goAuthKit.MetricLogout, Name: "authkit_logout_total", Help: "Logout operations."},
	{ID: goAuthKit.MetricSessionMinted, Name: "authkit_session_minted_total", Help: "Minted token triples."},
	{ID: goAuthKit.MetricSessionRevoked, Name: "authkit_session_revoked_total", Help: "Revoked sessions."},
	{ID: goAuthKit.MetricValidateSuccess, Name: "authkit_validate_success_total", Help: "Successful token validations."},
	{ID: goAuthKit.MetricValidateRejected, Name: "authkit_validate_rejected_total", Help: "Rejected token validations."},
	{ID: goAuthKit.MetricOriginMismatch, Name: "authkit_origin_mismatch_total", Help: "Validations rejected for origin mismatch."},
	{ID: goAuthKit.MetricAuthorizeDenied, Name: "authkit_authorize_denied_total", Help: "Denied authorization checks."},
	{ID: goAuthKit.MetricRevocationWriteFailure, Name: "authkit_revocation_write_failure_total", Help: "Failed revocation writes."},
	{ID: goAuthKit.MetricPasswordChangeSuccess, Name: "authkit_password_change_success_total", Help: "Successful password changes."},
	{ID: goAuthKit.MetricPasswordChangeReuseRejected, Name: "authkit_password_change_reuse_rejected_total", Help: "Password changes rejected for reuse."},
	{ID: goAuthKit.MetricPasswordResetSuccess, Name: "authkit_password_reset_success_total", Help: "Successful password resets."},
	{ID: goAuthKit.MetricRateLimitHit, Name: "authkit_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: goAuthKit.MetricValidateLatency, Name: "authkit_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
