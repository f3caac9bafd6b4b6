package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/utils"
)

// PrincipalResolver turns a bearer token into the identity it was issued for.
type PrincipalResolver interface {
	Principal(token string) (domain.Principal, error)
}

// Key to store the principal in the request context
type key int

const PrincipalKey key = 0

// AccessTokenCookie carries the token for browser sessions.
const AccessTokenCookie = "accessToken"

// Auth holds dependencies for authentication middleware
type Auth struct {
	resolver PrincipalResolver
}

func NewAuth(resolver PrincipalResolver) *Auth {
	return &Auth{resolver: resolver}
}

// NeedAuth rejects requests without a valid token with 401.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.extractPrincipal(r)
			if err != nil {
				if err == errNoToken {
					utils.WriteErrorAndStatusCode(w, errors.Unauthenticated("Please sign-in"))
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth populates the principal if the token is valid, but doesn't require auth
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, err := a.extractPrincipal(r); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractPrincipal(r *http.Request) (domain.Principal, error) {
	var tokenString string
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = strings.TrimSpace(token)
	} else if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		tokenString = cookie.Value
	}

	if tokenString == "" {
		return domain.Principal{}, errNoToken
	}

	return a.resolver.Principal(tokenString)
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipal returns the principal stored by NeedAuth or OptionalAuth.
func GetPrincipal(r *http.Request) (domain.Principal, bool) {
	p, ok := r.Context().Value(PrincipalKey).(domain.Principal)
	return p, ok && !p.IsZero()
}
