package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/session"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/state"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

const mockCCU = "https://allowed.com"

// newTestService wires a Service with real token machinery and the given mock providers.
func newTestService(providers ...oauth.Provider) *Service {
	states := state.NewCodec("mock-state-secret", 10*time.Minute)
	sessions := session.NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)
	return NewService([]string{mockCCU}, states, sessions, providers...)
}

func TestService_AvailableProviders(t *testing.T) {
	service := newTestService(&mockProvider{name: "google"}, &mockProvider{name: "apple"})

	// Sorted names, only the wired providers.
	require.Equal(t, []string{"apple", "google"}, service.AvailableProviders())
}

func TestService_BeginLogin(t *testing.T) {
	mProvider := &mockProvider{name: "google", authURL: "https://accounts.google.com/auth?mock=1"}
	service := newTestService(mProvider)

	authURL, stateToken, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	require.Equal(t, mProvider.authURL, authURL, "Incorrect auth URL")
	require.NotEmpty(t, stateToken, "State token is empty")
	require.Equal(t, stateToken, mProvider.argState, "Expected the provider to receive the minted state")

	// A second login attempt must mint a different state.
	_, secondState, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin second login")
	require.NotEqual(t, stateToken, secondState, "Expected two logins to have distinct states")
}

func TestService_BeginLogin_UnknownProvider(t *testing.T) {
	service := newTestService(&mockProvider{name: "google"})

	_, _, err := service.BeginLogin(context.Background(), "microsoft", mockCCU)
	require.ErrorIs(t, err, oauth.ErrNotConfigured, "Expected ErrNotConfigured")
}

func TestService_CompleteLogin(t *testing.T) {
	mProvider := &mockProvider{
		name:   "google",
		claims: oauth.RawClaims{"sub": "u-1", "email": "a@example.com"},
	}
	service := newTestService(mProvider)

	// Begin a login to obtain a genuine state token.
	_, stateToken, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	result, err := service.CompleteLogin(context.Background(), CallbackInput{
		Provider: "google",
		Code:     "mockCode",
		State:    stateToken,
	})
	require.NoError(t, err, "Failed to complete login")

	// The code must have reached the provider.
	require.Equal(t, "mockCode", mProvider.argCode, "Incorrect code passed to provider")

	// The callback URL must be recovered from the state token.
	require.Equal(t, mockCCU, result.ClientCallbackURL, "Incorrect client callback URL")

	// The normalized identity.
	require.Equal(t, "google", result.User.Provider, "Incorrect provider")
	require.Equal(t, "u-1", result.User.Subject, "Incorrect subject")
	require.Equal(t, "a@example.com", result.User.Email, "Incorrect email")

	// The issued session token must verify and carry the same identity.
	user, err := service.VerifySession(result.SessionToken)
	require.NoError(t, err, "Failed to verify issued session token")
	require.Equal(t, result.User.Subject, user.Subject, "Incorrect subject in session token")

	// The refresh token must mint a new, verifiable session token.
	newSession, err := service.RefreshSession(result.RefreshToken)
	require.NoError(t, err, "Failed to refresh session")
	_, err = service.VerifySession(newSession)
	require.NoError(t, err, "Failed to verify refreshed session token")
}

func TestService_CompleteLogin_ForeignState(t *testing.T) {
	mProvider := &mockProvider{name: "google", claims: oauth.RawClaims{"sub": "u-1"}}
	service := newTestService(mProvider)

	// A state minted by a process holding a different secret.
	foreignCodec := state.NewCodec("other-secret", 10*time.Minute)
	foreignState, err := foreignCodec.Issue(mockCCU)
	require.NoError(t, err, "Failed to issue foreign state")

	for _, tc := range []struct {
		name       string
		inputState string
	}{
		{name: "State never issued by this process", inputState: foreignState},
		{name: "Garbage state", inputState: "never-issued"},
		{name: "Empty state", inputState: ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mProvider.claimsFromCodeHit = false

			_, err := service.CompleteLogin(context.Background(), CallbackInput{
				Provider: "google",
				Code:     "mockCode",
				State:    tc.inputState,
			})
			require.ErrorIs(t, err, state.ErrInvalidState, "Expected ErrInvalidState")

			// The broker must not have attempted the token exchange.
			require.False(t, mProvider.claimsFromCodeHit, "Expected zero token endpoint calls")
		})
	}
}

func TestService_CompleteLogin_ExpiredState(t *testing.T) {
	mProvider := &mockProvider{name: "google", claims: oauth.RawClaims{"sub": "u-1"}}
	service := newTestService(mProvider)

	_, stateToken, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	// A token signed by the same secret but already past its expiry.
	expiredCodec := state.NewCodec("mock-state-secret", -time.Minute)
	expiredState, err := expiredCodec.Issue(mockCCU)
	require.NoError(t, err, "Failed to issue expired state")

	_, err = service.CompleteLogin(context.Background(), CallbackInput{
		Provider: "google", Code: "mockCode", State: expiredState,
	})
	require.ErrorIs(t, err, state.ErrInvalidState, "Expected expired state to be rejected")
	require.False(t, mProvider.claimsFromCodeHit, "Expected zero token endpoint calls")

	// The fresh token still works.
	_, err = service.CompleteLogin(context.Background(), CallbackInput{
		Provider: "google", Code: "mockCode", State: stateToken,
	})
	require.NoError(t, err, "Expected fresh state to be accepted")
}

func TestService_CompleteLogin_ProviderFailure(t *testing.T) {
	mProvider := &mockProvider{
		name:              "google",
		errClaimsFromCode: &oauth.ProviderError{Provider: "google", Category: oauth.CategoryInvalidGrant},
	}
	service := newTestService(mProvider)

	_, stateToken, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	_, err = service.CompleteLogin(context.Background(), CallbackInput{
		Provider: "google", Code: "mockCode", State: stateToken,
	})

	var pErr *oauth.ProviderError
	require.ErrorAs(t, err, &pErr, "Expected a ProviderError")
	require.Equal(t, oauth.CategoryInvalidGrant, pErr.Category, "Incorrect category")
}

func TestService_CompleteLogin_MalformedClaims(t *testing.T) {
	// The provider responds without a subject identifier.
	mProvider := &mockProvider{name: "google", claims: oauth.RawClaims{"email": "a@example.com"}}
	service := newTestService(mProvider)

	_, stateToken, err := service.BeginLogin(context.Background(), "google", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	_, err = service.CompleteLogin(context.Background(), CallbackInput{
		Provider: "google", Code: "mockCode", State: stateToken,
	})

	var pErr *oauth.ProviderError
	require.ErrorAs(t, err, &pErr, "Expected a ProviderError")
	require.Equal(t, oauth.CategoryMalformedClaims, pErr.Category, "Incorrect category")
}

func TestService_CompleteLogin_AppleUserPayload(t *testing.T) {
	mProvider := &mockProvider{
		name:   "apple",
		claims: oauth.RawClaims{"sub": "apple-1", "email": "relay@privaterelay.appleid.com"},
	}
	service := newTestService(mProvider)

	_, stateToken, err := service.BeginLogin(context.Background(), "apple", mockCCU)
	require.NoError(t, err, "Failed to begin login")

	result, err := service.CompleteLogin(context.Background(), CallbackInput{
		Provider:    "apple",
		Code:        "mockCode",
		State:       stateToken,
		UserPayload: `{"name":{"firstName":"Ace","lastName":"High"}}`,
	})
	require.NoError(t, err, "Failed to complete login")

	// The one-time payload must surface as the display name.
	require.Equal(t, "Ace High", result.User.DisplayName, "Incorrect display name")
}
