package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postboard-dev/postboard/shared/domain"
	jwt_internal "github.com/postboard-dev/postboard/shared/jwt"
	"github.com/stretchr/testify/assert"
)

func TestNeedAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret_0123456", time.Hour)
	token, _ := jwtService.NewToken(domain.User{Id: "user-1"})

	tests := []struct {
		name              string
		header            string
		cookie            *http.Cookie
		expectedStatus    int
		expectedPrincipal domain.Principal
	}{
		{
			name:              "Bearer header",
			header:            "Bearer " + token,
			expectedStatus:    http.StatusOK,
			expectedPrincipal: domain.Principal{UserId: "user-1"},
		},
		{
			name:              "Cookie",
			cookie:            &http.Cookie{Name: "accessToken", Value: token},
			expectedStatus:    http.StatusOK,
			expectedPrincipal: domain.Principal{UserId: "user-1"},
		},
		{
			name:           "No token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			header:         "Bearer invalid_token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			var got domain.Principal
			handler := NewAuth(jwtService).NeedAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = GetPrincipal(r)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedPrincipal, got)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret_0123456", time.Hour)
	token, _ := jwtService.NewToken(domain.User{Id: "user-1"})
	mw := NewAuth(jwtService).OptionalAuth()

	t.Run("anonymous passes through", func(t *testing.T) {
		var ok bool
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = GetPrincipal(r)
		})).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, ok)
	})

	t.Run("valid token populates principal", func(t *testing.T) {
		var p domain.Principal
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ = GetPrincipal(r)
		})).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "user-1", p.UserId)
	})
}
