package goAuthKit

import (
	"context"
	"io"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goAuthKit/internal/audit"
)

// Channel identifies which contact channel an identifier belongs to.
type Channel string

const (
	// ChannelEmail is an exported constant or variable used by the authentication engine.
	ChannelEmail Channel = "email"
	// ChannelPhone is an exported constant or variable used by the authentication engine.
	ChannelPhone Channel = "phone"
)

// ChannelOf classifies an identifier as email or phone. Anything containing
// an "@" is treated as an email address; everything else as a phone number.
func ChannelOf(identifier string) Channel {
	if strings.Contains(identifier, "@") {
		return ChannelEmail
	}
	return ChannelPhone
}

// UserRecord is the full account record returned by [UserProvider].
// It carries the credential hash, contact identifiers, and status flags.
type UserRecord struct {
	UserID        string
	Email         string
	Phone         string
	Username      string
	FirstName     string
	LastName      string
	PasswordHash  string
	IsActive      bool
	IsVerified    bool
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserProfile is the serializable snapshot embedded in session tokens so
// that session-token validation needs no database round-trip.
type UserProfile struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone_number,omitempty"`
	Username      string `json:"username,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	IsActive      bool   `json:"is_active"`
	IsVerified    bool   `json:"is_verified"`
	EmailVerified bool   `json:"is_email_verified"`
	PhoneVerified bool   `json:"is_phone_verified"`
}

// CreateUserInput is the input for [UserProvider.CreateUser]. The signup
// flow fills either the email or the phone path; the store persists what
// it is given without re-deriving fields.
type CreateUserInput struct {
	Email         string
	Phone         string
	Username      string
	FirstName     string
	LastName      string
	PasswordHash  string
	IsActive      bool
	IsVerified    bool
	EmailVerified bool
	PhoneVerified bool
}

// UserProvider is the primary interface that callers must implement to
// integrate goAuthKit with their user database. It covers credential
// lookup, account creation, password updates, and verification flags.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	MarkChannelVerified(ctx context.Context, userID string, channel Channel) error
}

// AuthResult is returned by the authentication entry points. All three
// tokens share one session ID and subject.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	SessionToken string
	SessionID    string
	Profile      UserProfile
}

// Principal is the authenticated-user view produced by
// [Engine.AuthenticateRequest] and [Engine.AuthenticateToken]. For session
// tokens Profile and Permissions are populated from the embedded snapshot;
// for access tokens only the claim-derived fields are set.
type Principal struct {
	UserID      string
	TokenType   string
	SessionID   string
	JTI         string
	Origin      string
	Profile     *UserProfile
	Permissions []string
}

// SignupRequest is the input for [Engine.Signup]. Identifier is an email
// address or phone number; Code is the OTP previously delivered to it.
type SignupRequest struct {
	Identifier string
	Password   string
	Code       string
	FirstName  string
	LastName   string
}

// LogoutReport carries the per-sub-operation outcome of a best-effort
// logout. Logout is not atomic: any subset of the three revocations may
// succeed, and each result is reported individually.
type LogoutReport struct {
	AccessBlacklisted bool
	RefreshRevoked    bool
	SessionsRevoked   bool
}

// Complete reports whether every logout sub-operation succeeded.
func (r LogoutReport) Complete() bool {
	return r.AccessBlacklisted && r.RefreshRevoked && r.SessionsRevoked
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
