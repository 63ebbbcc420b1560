package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/auth"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/repository"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// signInFailedMessage is the only failure message a user ever sees on the callback.
// It deliberately does not distinguish a state mismatch from a provider rejection,
// so an attacker gets no signal about which stage failed.
const signInFailedMessage = "sign-in failed, please try again"

// Callback handles the provider's OAuth callback.
//
// It accepts both GET and POST because Apple delivers its callback as a form POST
// whenever the name or email scope was requested, while the other providers use a
// plain GET redirect. r.FormValue covers both transparently.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Obtain params from the request.
	providerName := mux.Vars(r)["provider"]
	stateToken, errAuth, code := r.FormValue("state"), r.FormValue("error"), r.FormValue("code")
	// Apple's one-time user payload. Absent for every other provider.
	userPayload := r.FormValue("user")

	// State validation. Without a syntactically sane state the client callback URL
	// is unknown, so failures here fall back to the first allowed redirect URL.
	if err := validateStateParam(stateToken); err != nil {
		slog.ErrorContext(ctx, "invalid state from provider", "error", err)
		h.errorRedirect(w, h.config.AllowedRedirectURLs[0])
		return
	}

	// Provider name validation.
	if err := validateProvider(providerName); err != nil {
		slog.ErrorContext(ctx, "invalid provider in callback", "value", providerName, "error", err)
		h.errorRedirect(w, h.config.AllowedRedirectURLs[0])
		return
	}

	// If this error is not empty, then the OAuth flow has failed from the provider's side.
	if errAuth != "" {
		slog.ErrorContext(ctx, "provider called back with error", "error", errAuth)
		h.errorRedirect(w, h.config.AllowedRedirectURLs[0])
		return
	}

	// Authorization code validation.
	if err := validateAuthCode(code); err != nil {
		slog.ErrorContext(ctx, "invalid code in callback", "error", err)
		h.errorRedirect(w, h.config.AllowedRedirectURLs[0])
		return
	}

	// Complete the flow: state check, code exchange, normalization, token issuance.
	result, err := h.service.CompleteLogin(ctx, auth.CallbackInput{
		Provider:    providerName,
		Code:        code,
		State:       stateToken,
		UserPayload: userPayload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error in CompleteLogin call", "provider", providerName, "error", err)
		h.errorRedirect(w, h.config.AllowedRedirectURLs[0])
		return
	}

	// Persist the user record asynchronously. Login does not wait for the database.
	go h.upsertUser(result.User)

	secure := strings.HasPrefix(h.config.Application.BaseURL, "https://")

	// Session cookie for regular authenticated calls.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		MaxAge:   int(h.config.Auth.SessionTTL.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	// Refresh cookie, scoped to the refresh endpoint only.
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/api/auth/refresh",
		MaxAge:   int(h.config.Auth.RefreshTTL.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	// Success redirect URL.
	redirectURL := fmt.Sprintf("%s?provider=%s", result.ClientCallbackURL, providerName)
	headers := map[string]string{"Location": redirectURL}
	httputils.Write(w, http.StatusFound, headers, nil)
}

// upsertUser stores the given identity in the database.
func (h *Handler) upsertUser(user oauth.UserInfo) {
	// Do not use the request's context for this operation.
	ctx := context.Background()

	record := repository.User{
		Provider:    user.Provider,
		Subject:     user.Subject,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PictureURL:  user.PictureURL,
	}

	if err := h.repo.UpsertUser(ctx, record); err != nil {
		slog.ErrorContext(ctx, "error in UpsertUser call", "error", err)
	}
}

// errorRedirect redirects the caller (by writing 302 and the Location header to the response) and attaches
// the generic sign-in failure message as a query parameter.
func (h *Handler) errorRedirect(w http.ResponseWriter, targetURL string) {
	redirectURL := fmt.Sprintf("%s?error=%s", targetURL, url.QueryEscape(signInFailedMessage))
	headers := map[string]string{"Location": redirectURL}
	httputils.Write(w, http.StatusFound, headers, nil)
}
