package middleware

import (
	"net/http"

	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/middleware/ratelimiter"
	"github.com/postboard-dev/postboard/shared/utils"
)

func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
					Message:    "Rate limit exceeded, try again later",
					StatusCode: http.StatusTooManyRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalOrIP keys authenticated requests by user and anonymous ones by client ip.
func PrincipalOrIP(r *http.Request) (string, error) {
	if p, ok := GetPrincipal(r); ok {
		return "user_" + p.UserId, nil
	}
	ip, err := utils.GetIP(r)
	if err != nil {
		return "", errors.BadRequest("Can't determine client address")
	}
	return "ip_" + ip, nil
}
