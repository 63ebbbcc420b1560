package session

import (
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// mockUser is the identity used across the tests in this file.
var mockUser = oauth.UserInfo{
	Provider:    "google",
	Subject:     "u-1",
	Email:       "a@example.com",
	DisplayName: "Ace High",
}

func TestIssuer_IssueVerify_RoundTrip(t *testing.T) {
	issuer := NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)

	sessionToken, refreshToken, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")
	require.NotEmpty(t, sessionToken, "Session token is empty")
	require.NotEmpty(t, refreshToken, "Refresh token is empty")

	user, err := issuer.Verify(sessionToken)
	require.NoError(t, err, "Failed to verify session token")

	require.Equal(t, mockUser.Provider, user.Provider, "Incorrect provider")
	require.Equal(t, mockUser.Subject, user.Subject, "Incorrect subject")
	require.Equal(t, mockUser.Email, user.Email, "Incorrect email")
	require.Equal(t, mockUser.DisplayName, user.DisplayName, "Incorrect display name")
}

func TestIssuer_Verify_Expiry(t *testing.T) {
	mockNow := time.Now()

	issuer := NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)
	issuer.now = func() time.Time { return mockNow }

	sessionToken, _, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// Valid right before expiry.
	issuer.now = func() time.Time { return mockNow.Add(time.Hour - time.Second) }
	_, err = issuer.Verify(sessionToken)
	require.NoError(t, err, "Expected token to be valid before expiry")

	// Invalid at expiry.
	issuer.now = func() time.Time { return mockNow.Add(time.Hour + time.Second) }
	_, err = issuer.Verify(sessionToken)
	require.ErrorIs(t, err, ErrInvalidToken, "Expected token to be invalid after expiry")
}

func TestIssuer_Verify_TamperedToken(t *testing.T) {
	issuer := NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)

	sessionToken, _, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// Flipping a byte in any of the three token parts must break verification.
	parts := strings.Split(sessionToken, ".")
	require.Len(t, parts, 3, "Expected token to have three dot separated parts")

	offset := 0
	for _, part := range parts {
		tampered := []byte(sessionToken)
		tampered[offset] ^= 0x01
		require.NotEqual(t, sessionToken, string(tampered))

		_, err := issuer.Verify(string(tampered))
		require.ErrorIs(t, err, ErrInvalidToken, "Expected tampered token to be rejected at byte %d", offset)

		offset += len(part) + 1
	}
}

func TestIssuer_Verify_RejectsRefreshToken(t *testing.T) {
	issuer := NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)

	_, refreshToken, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// A refresh token is never a valid session credential.
	_, err = issuer.Verify(refreshToken)
	require.ErrorIs(t, err, ErrInvalidToken, "Expected refresh token to be rejected as a session token")
}

func TestIssuer_Refresh(t *testing.T) {
	const sessionTTL = time.Hour
	mockNow := time.Now()

	issuer := NewIssuer("mock-signing-secret", sessionTTL, 100*time.Hour)
	issuer.now = func() time.Time { return mockNow }

	_, refreshToken, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// Present the refresh token well after the original session has expired.
	presentedAt := mockNow.Add(2 * sessionTTL)
	issuer.now = func() time.Time { return presentedAt }

	newSession, err := issuer.Refresh(refreshToken)
	require.NoError(t, err, "Failed to refresh session")

	// The new session must be usable right now.
	user, err := issuer.Verify(newSession)
	require.NoError(t, err, "Failed to verify refreshed session token")
	require.Equal(t, mockUser.Subject, user.Subject, "Incorrect subject")

	// And its expiry must be strictly later than the original session's.
	parsed, err := jwt.Parse([]byte(newSession), jwt.WithVerify(false), jwt.WithValidate(false))
	require.NoError(t, err, "Failed to parse refreshed session token")

	expiry, found := parsed.Expiration()
	require.True(t, found, "Expected the refreshed token to have an expiry")
	require.True(t, expiry.After(mockNow.Add(sessionTTL)),
		"Expected refreshed expiry to be later than the original session lifetime")
}

func TestIssuer_Refresh_RejectsSessionToken(t *testing.T) {
	issuer := NewIssuer("mock-signing-secret", time.Hour, 100*time.Hour)

	sessionToken, _, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// A session token must not mint new sessions.
	_, err = issuer.Refresh(sessionToken)
	require.ErrorIs(t, err, ErrInvalidToken, "Expected session token to be rejected as a refresh token")
}

func TestIssuer_Verify_ExpiredRefreshToken(t *testing.T) {
	mockNow := time.Now()

	issuer := NewIssuer("mock-signing-secret", time.Hour, 10*time.Hour)
	issuer.now = func() time.Time { return mockNow }

	_, refreshToken, err := issuer.Issue(mockUser)
	require.NoError(t, err, "Failed to issue tokens")

	// Past the refresh lifetime, the refresh token dies too.
	issuer.now = func() time.Time { return mockNow.Add(11 * time.Hour) }
	_, err = issuer.Refresh(refreshToken)
	require.ErrorIs(t, err, ErrInvalidToken, "Expected expired refresh token to be rejected")
}
