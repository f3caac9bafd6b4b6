package middleware

import (
	"net/http"
	"strings"

	"github.com/postboard-dev/postboard/shared/csrf"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/utils"
)

// CSRF checks unsafe requests authenticated by the session cookie: the csrf
// cookie has to be echoed in the X-CSRF-Token header. Bearer requests and
// requests without a session cookie pass through.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := r.Cookie(AccessTokenCookie); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var cookieToken string
		if c, err := r.Cookie(csrf.CookieName); err == nil {
			cookieToken = c.Value
		}
		if !csrf.ValidateToken(cookieToken, r.Header.Get(csrf.HeaderName)) {
			logger.Log.Warn("csrf token validation failed", "path", r.URL.Path)
			utils.WriteErrorAndStatusCode(w, errors.Forbidden("CSRF token invalid"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
