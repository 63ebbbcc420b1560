package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

var (
	errUnknownRedirectURL  = errutils.BadRequest().WithReasonStr("redirect_url is not allowed")
	errUnsupportedProvider = errutils.BadRequest().WithReasonStr("provider is not supported")
)

// Redirect starts the OAuth flow by redirecting the caller to the specified provider's authentication page.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Provider is a path parameter and so it will always be present.
	providerName := mux.Vars(r)["provider"]
	// Once authentication is done, the flow will end on this URL.
	clientCallbackURL := r.URL.Query().Get("redirect_url")

	// Provider name validation.
	if err := validateProvider(providerName); err != nil {
		slog.ErrorContext(ctx, "invalid provider", "value", providerName, "error", err)
		httputils.WriteErr(w, errutils.BadRequest().WithReasonErr(err))
		return
	}

	// Client callback URL validation.
	if err := validateClientCallbackURL(clientCallbackURL); err != nil {
		slog.ErrorContext(ctx, "invalid client callback URL", "value", clientCallbackURL, "error", err)
		httputils.WriteErr(w, errutils.BadRequest().WithReasonErr(err))
		return
	}

	// Client callback URL must be one of the allowed ones.
	if !slices.Contains(h.config.AllowedRedirectURLs, clientCallbackURL) {
		slog.ErrorContext(ctx, "request contains unknown redirect_url")
		httputils.WriteErr(w, errUnknownRedirectURL)
		return
	}

	// Mint the state token and build the provider's auth URL.
	authURL, _, err := h.service.BeginLogin(ctx, providerName, clientCallbackURL)
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			slog.ErrorContext(ctx, "provider is not configured", "provider", providerName)
			httputils.WriteErr(w, errUnsupportedProvider)
			return
		}
		slog.ErrorContext(ctx, "error in BeginLogin call", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	// Response headers.
	headers := map[string]string{
		"Location": authURL,
		// The following headers make sure that the browser is not allowed to render the page
		// in a <frame>, <iframe>, <embed> or <object> tag.
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "frame-ancestors 'none'",
	}

	// Redirect.
	httputils.Write(w, http.StatusFound, headers, nil)
}
