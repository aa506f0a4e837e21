package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	goAuthKit "github.com/MrEthical07/goAuthKit"
)

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal injected by
// [Authenticate], if any.
func PrincipalFromContext(ctx context.Context) (*goAuthKit.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*goAuthKit.Principal)
	return p, ok
}

// Authenticate rejects requests that do not carry a valid, unrevoked
// token and injects the resulting principal into the request context.
func Authenticate(engine *goAuthKit.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)
			principal, err := engine.AuthenticateRequest(ctx, r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermissions layers an authorization check over [Authenticate]'s
// principal. With requireAll false any listed permission suffices.
// Responds 401 without a principal, 403 on denial.
func RequirePermissions(engine *goAuthKit.Engine, permissions []string, requireAll bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := engine.Authorize(r.Context(), principal, permissions, requireAll); err != nil {
				if errors.Is(err, goAuthKit.ErrPermissionDenied) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestContext seeds the context with the request's client IP and
// user agent so engine audit events and throttles can key on them.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if ip := clientIP(r); ip != "" {
		ctx = goAuthKit.WithClientIP(ctx, ip)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = goAuthKit.WithUserAgent(ctx, ua)
	}
	return ctx
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
