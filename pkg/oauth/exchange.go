package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
)

// exchangeTimeout bounds the token-endpoint HTTP call. An unreachable provider must
// surface as an error, not hang the login flow indefinitely.
const exchangeTimeout = 10 * time.Second

// tokenResponse is the common body schema of an OAuth token endpoint success response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// oauthErrorResponse is the standard OAuth error body returned by token endpoints.
type oauthErrorResponse struct {
	Error string `json:"error"`
}

// postTokenForm executes a form-encoded POST against the given token endpoint, as
// required by the OAuth spec, and decodes the response.
//
// Failures come back as *ProviderError carrying only the coarse category and the
// upstream status code. The form values (which include client credentials) are
// never logged or embedded in errors.
func postTokenForm(ctx context.Context, client *http.Client, provider, endpoint string, form url.Values,
) (tokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	// Form the HTTP request.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("error in http.NewRequestWithContext call: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Execute request.
	res, err := client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "token endpoint unreachable", "provider", provider)
		return tokenResponse{}, &ProviderError{Provider: provider, Category: CategoryUpstreamUnavailable}
	}
	// Close response body upon return.
	defer func() { _ = res.Body.Close() }()

	// Check if the request failed.
	if !httputils.Is2xx(res.StatusCode) {
		// The standard error body is safe to decode for categorization.
		var errBody oauthErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&errBody)

		category := categorize(res.StatusCode, errBody.Error)
		slog.ErrorContext(ctx, "token exchange rejected",
			"provider", provider, "status", res.StatusCode, "category", category)
		return tokenResponse{}, &ProviderError{Provider: provider, Category: category, StatusCode: res.StatusCode}
	}

	// Decode the success response.
	var tokenRes tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tokenRes); err != nil {
		return tokenResponse{}, fmt.Errorf("error in json Decode call: %w", err)
	}

	return tokenRes, nil
}

// categorize maps an upstream failure to a coarse Category.
func categorize(statusCode int, oauthError string) Category {
	switch oauthError {
	case "invalid_client", "unauthorized_client":
		return CategoryInvalidClient
	case "invalid_grant", "invalid_request":
		return CategoryInvalidGrant
	}

	if statusCode >= 500 {
		return CategoryUpstreamUnavailable
	}
	return CategoryInvalidGrant
}

// claimsFromPayload decodes the payload segment of the given JWT into RawClaims.
//
// It performs no verification whatsoever, so it must only be called on tokens whose
// signature has already been verified.
func claimsFromPayload(token string) (RawClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("token does not have three dot separated parts")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to base64 decode token payload: %w", err)
	}

	var claims RawClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal call: %w", err)
	}

	return claims, nil
}
