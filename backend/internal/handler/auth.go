package handler

import (
	"fmt"
	"net/http"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/csrf"
	mw "github.com/postboard-dev/postboard/shared/middleware"
	"github.com/postboard-dev/postboard/shared/utils"
)

const accessTokenCookie = mw.AccessTokenCookie

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.setSessionCookies(w, resp.Token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.setSessionCookies(w, resp.Token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     accessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Public.Http.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     csrf.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   h.cfg.Public.Http.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Logged out"})
}

// setSessionCookies lets browsers authenticate without handling the token; API
// clients use the bearer token from the body instead. The csrf cookie must be
// echoed in a header on cookie-authenticated writes.
func (h *Handler) setSessionCookies(w http.ResponseWriter, token string) error {
	csrfToken, err := csrf.GenerateToken()
	if err != nil {
		return fmt.Errorf("generate csrf token: %w", err)
	}
	maxAge := int(h.cfg.JwtTTL().Seconds())
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     csrf.CookieName,
		Value:    csrfToken,
		MaxAge:   maxAge,
		Secure:   h.cfg.Public.Http.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     accessTokenCookie,
		Value:    token,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.Http.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
