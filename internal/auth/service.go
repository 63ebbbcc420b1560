// Package auth contains the authentication orchestrator: the façade the rest of
// the application talks to. It composes the provider adapters, the state codec and
// the session issuer into the authorization-request → callback → session-issuance
// flow.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/session"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/state"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// Service orchestrates the login flow across providers.
//
// It is stateless across login attempts: the state token round-tripped through the
// provider is self-contained, so any instance can complete a login another instance
// began.
type Service struct {
	allowedRedirectURLs []string
	providers           map[string]oauth.Provider

	states   *state.Codec
	sessions *session.Issuer
}

// NewService creates a new Service instance with the given providers.
//
// Only fully configured providers should be passed in. A provider missing from the
// set is simply not offered, which is how configuration gaps are resolved once at
// startup instead of being special-cased downstream.
func NewService(allowedRedirectURLs []string, states *state.Codec, sessions *session.Issuer,
	providers ...oauth.Provider,
) *Service {
	providerMap := make(map[string]oauth.Provider, len(providers))
	for _, provider := range providers {
		providerMap[provider.Name()] = provider
	}

	return &Service{
		allowedRedirectURLs: allowedRedirectURLs,
		providers:           providerMap,
		states:              states,
		sessions:            sessions,
	}
}

// AvailableProviders returns the sorted names of all usable providers.
func (s *Service) AvailableProviders() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// BeginLogin mints a state token bound to the given client callback URL and
// returns the provider's authorization URL along with the state embedded in it.
func (s *Service) BeginLogin(ctx context.Context, providerName, clientCallbackURL string,
) (authURL, stateToken string, err error) {
	provider, found := s.providers[providerName]
	if !found {
		return "", "", oauth.ErrNotConfigured
	}

	stateToken, err = s.states.Issue(clientCallbackURL)
	if err != nil {
		return "", "", fmt.Errorf("error in states.Issue call: %w", err)
	}

	return provider.GetAuthURL(ctx, stateToken), stateToken, nil
}

// CallbackInput carries everything the provider sent to the callback endpoint.
type CallbackInput struct {
	// Provider is the name of the provider that called back.
	Provider string
	// Code is the authorization code to exchange.
	Code string
	// State is the state token round-tripped through the provider.
	State string
	// RedirectURL is the client callback URL this login is expected to end on.
	// Leave empty to accept whichever URL the state token was issued for.
	RedirectURL string
	// UserPayload is Apple's one-time "user" form field. Empty for other providers
	// and for all but the first Apple authorization of a subject.
	UserPayload string
}

// LoginResult is the outcome of a successfully completed login.
type LoginResult struct {
	// SessionToken is the broker's own session credential.
	SessionToken string
	// RefreshToken mints new session tokens without a provider round-trip.
	RefreshToken string
	// ClientCallbackURL is the URL the login flow should end on, recovered from the
	// state token.
	ClientCallbackURL string
	// User is the canonical identity of the authenticated user.
	User oauth.UserInfo
}

// CompleteLogin validates the state token, exchanges the authorization code and
// issues the broker's own tokens.
//
// The state is validated before anything else. A state token this process's secret
// never signed fails right here, with zero outbound calls made.
func (s *Service) CompleteLogin(ctx context.Context, in CallbackInput) (LoginResult, error) {
	clientCallbackURL, err := s.states.Validate(in.State, in.RedirectURL)
	if err != nil {
		return LoginResult{}, err
	}

	// The state signature already proves this process issued the token, but the
	// allow-list may have changed since.
	if !slices.Contains(s.allowedRedirectURLs, clientCallbackURL) {
		return LoginResult{}, state.ErrInvalidState
	}

	provider, found := s.providers[in.Provider]
	if !found {
		return LoginResult{}, oauth.ErrNotConfigured
	}

	claims, err := provider.ClaimsFromCode(ctx, in.Code)
	if err != nil {
		return LoginResult{}, fmt.Errorf("error in ClaimsFromCode call: %w", err)
	}

	// Attach the out-of-band user payload, if any, before normalization. This is a
	// no-op for providers that never send one.
	claims = oauth.MergeUserPayload(claims, in.UserPayload)

	user, err := oauth.Normalize(in.Provider, claims)
	if err != nil {
		return LoginResult{}, fmt.Errorf("error in Normalize call: %w", err)
	}

	sessionToken, refreshToken, err := s.sessions.Issue(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("error in sessions.Issue call: %w", err)
	}

	slog.InfoContext(ctx, "login completed", "provider", in.Provider, "subject", user.Subject)

	return LoginResult{
		SessionToken:      sessionToken,
		RefreshToken:      refreshToken,
		ClientCallbackURL: clientCallbackURL,
		User:              user,
	}, nil
}

// VerifySession checks the given session token and returns the identity embedded in it.
func (s *Service) VerifySession(token string) (oauth.UserInfo, error) {
	return s.sessions.Verify(token)
}

// RefreshSession validates the given refresh token and returns a new session token.
func (s *Service) RefreshSession(refreshToken string) (string, error) {
	return s.sessions.Refresh(refreshToken)
}
