package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
)

// Refresh exchanges a valid refresh token for a new session token, without
// requiring another provider round-trip.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Get the refresh cookie.
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		slog.ErrorContext(ctx, "no refresh cookie in the request")
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	// Validate the refresh token and mint a new session token.
	sessionToken, err := h.service.RefreshSession(cookie.Value)
	if err != nil {
		slog.ErrorContext(ctx, "failed to refresh session", "error", err)
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	// Replace the session cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int(h.config.Auth.SessionTTL.Seconds()),
		Secure:   strings.HasPrefix(h.config.Application.BaseURL, "https://"),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	httputils.Write(w, http.StatusOK, nil, map[string]string{"status": "refreshed"})
}
