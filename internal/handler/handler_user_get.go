package handler

import (
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/gorilla/mux"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
)

var errInvalidEmail = errutils.BadRequest().WithReasonStr("email is not valid")

// GetUser fetches the stored record of the user with the given email.
// It requires a valid session.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Only authenticated callers may look up user records.
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		slog.ErrorContext(ctx, "no session cookie in the request")
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}
	if _, err := h.service.VerifySession(cookie.Value); err != nil {
		slog.ErrorContext(ctx, "failed to verify session token", "error", err)
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	// Email is a path parameter and so it will always be present.
	email := mux.Vars(r)["email"]
	if _, err := mail.ParseAddress(email); err != nil {
		slog.ErrorContext(ctx, "invalid email in request", "error", err)
		httputils.WriteErr(w, errInvalidEmail)
		return
	}

	// Database call.
	user, err := h.repo.GetUserByEmail(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "error in GetUserByEmail call", "error", err)
		httputils.WriteErr(w, err)
		return
	}

	httputils.Write(w, http.StatusOK, nil, user)
}
