package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
)

// sessionCookieName is the admin session cookie. It is httpOnly and
// same-site-strict so the token never leaves the first-party context.
const sessionCookieName = "admin_session"

type ctxKey int

const adminIDKey ctxKey = iota

func setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// requireAdmin guards admin routes. A missing, unknown, or expired session is
// rejected uniformly with 401 and the stale cookie is cleared.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := h.auth.Validate(r.Context(), sessionToken(r))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				clearSessionCookie(w)
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			respondDomainError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminIDKey, adminID)))
	})
}

func adminIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(adminIDKey).(int64)
	return id
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, admin, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	setSessionCookie(w, session)
	respondJSON(w, http.StatusOK, map[string]any{
		"admin": map[string]any{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

func (h *Handler) adminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		respondDomainError(w, r, err)
		return
	}
	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) adminMe(w http.ResponseWriter, r *http.Request) {
	admin, err := h.auth.AdminByID(r.Context(), adminIDFrom(r.Context()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":       admin.ID,
		"username": admin.Username,
	})
}
