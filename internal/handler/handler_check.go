package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
)

// Check performs an authentication check on the given request and returns the
// identity embedded in the session token.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Get cookie for authentication.
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		// Known error.
		if errors.Is(err, http.ErrNoCookie) {
			slog.ErrorContext(ctx, "no session cookie in the request")
			httputils.WriteErr(w, errutils.Unauthorized())
			return
		}
		// Unexpected error.
		slog.ErrorContext(ctx, "failed to get cookie from request", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	// Verify the token signature and expiry, and obtain the identity.
	user, err := h.service.VerifySession(cookie.Value)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify session token", "error", err)
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	// Identity headers for reverse proxies that use this endpoint as an auth check.
	headers := map[string]string{
		"X-Auth-Provider": user.Provider,
		"X-Auth-Subject":  user.Subject,
		"X-Auth-Email":    user.Email,
		"X-Auth-Name":     user.DisplayName,
	}

	httputils.Write(w, http.StatusOK, headers, user)
}
