package test

import (
	"context"
	"net/http"
	"testing"

	goAuthKit "github.com/MrEthical07/goAuthKit"
	"github.com/MrEthical07/goAuthKit/jwt"
	"github.com/MrEthical07/goAuthKit/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goAuthKit.New
	_ = goAuthKit.DefaultConfig

	var _ *goAuthKit.Engine
	var _ *goAuthKit.Builder
	var _ goAuthKit.Config
	var _ goAuthKit.AuthResult
	var _ goAuthKit.Principal
	var _ goAuthKit.SignupRequest
	var _ goAuthKit.LogoutReport
	var _ goAuthKit.UserRecord
	var _ goAuthKit.UserProfile
	var _ goAuthKit.CreateUserInput
	var _ goAuthKit.UserProvider
	var _ goAuthKit.AuditSink
	var _ goAuthKit.MetricsSnapshot

	var _ error = goAuthKit.ErrUnauthenticated
	var _ error = goAuthKit.ErrInvalidCredentials
	var _ error = goAuthKit.ErrUserNotFound
	var _ error = goAuthKit.ErrAccountExists
	var _ error = goAuthKit.ErrInvalidOTP
	var _ error = goAuthKit.ErrLoginRateLimited
	var _ error = goAuthKit.ErrRefreshRateLimited
	var _ error = goAuthKit.ErrTokenInvalid
	var _ error = goAuthKit.ErrTokenExpired
	var _ error = goAuthKit.ErrTokenTypeMismatch
	var _ error = goAuthKit.ErrTokenRevoked
	var _ error = goAuthKit.ErrSessionRevoked
	var _ error = goAuthKit.ErrUserRevoked
	var _ error = goAuthKit.ErrOriginMismatch
	var _ error = goAuthKit.ErrPermissionDenied
	var _ error = &goAuthKit.ForbiddenError{}

	var _ func(*goAuthKit.Engine) func(http.Handler) http.Handler = middleware.Authenticate
	var _ func(*goAuthKit.Engine, []string, bool) func(http.Handler) http.Handler = middleware.RequirePermissions
	var _ func(context.Context) (*goAuthKit.Principal, bool) = middleware.PrincipalFromContext

	var _ func(*http.Request) (string, jwt.TokenType, bool) = goAuthKit.ExtractToken

	var _ func(*goAuthKit.Engine, context.Context, string, string) (*goAuthKit.AuthResult, error) = (*goAuthKit.Engine).Login
	var _ func(*goAuthKit.Engine, context.Context, string, string) (*goAuthKit.AuthResult, error) = (*goAuthKit.Engine).LoginWithOTP
	var _ func(*goAuthKit.Engine, context.Context, goAuthKit.SignupRequest) (*goAuthKit.AuthResult, error) = (*goAuthKit.Engine).Signup
	var _ func(*goAuthKit.Engine, context.Context, string) (*goAuthKit.AuthResult, error) = (*goAuthKit.Engine).Refresh
	var _ func(*goAuthKit.Engine, context.Context, string) (goAuthKit.LogoutReport, error) = (*goAuthKit.Engine).Logout
	var _ func(*goAuthKit.Engine, context.Context, *http.Request) (*goAuthKit.Principal, error) = (*goAuthKit.Engine).AuthenticateRequest
	var _ func(*goAuthKit.Engine, context.Context, string, ...jwt.TokenType) (*goAuthKit.Principal, error) = (*goAuthKit.Engine).AuthenticateToken
	var _ func(*goAuthKit.Engine, context.Context, *goAuthKit.Principal, []string, bool) error = (*goAuthKit.Engine).Authorize
	var _ func(*goAuthKit.Engine, context.Context, string, string, string) error = (*goAuthKit.Engine).ChangePassword
	var _ func(*goAuthKit.Engine, context.Context, string, string, string) error = (*goAuthKit.Engine).ForgotPassword
	var _ func(*goAuthKit.Engine, context.Context, string) error = (*goAuthKit.Engine).RequestOTP
	var _ func(*goAuthKit.Engine, context.Context, string) (bool, error) = (*goAuthKit.Engine).IdentifierAvailable
	var _ func(*goAuthKit.Engine, context.Context, string) ([]string, error) = (*goAuthKit.Engine).UserGroups
	var _ func(*goAuthKit.Engine, context.Context, string) ([]string, error) = (*goAuthKit.Engine).UserPermissions
	var _ func(*goAuthKit.Engine, context.Context, string, []string, string) error = (*goAuthKit.Engine).AssignGroups
}
