// Package session mints and verifies the broker's own signed tokens, which
// represent an authenticated session after the provider flow completes.
//
// Both token kinds are self-contained HS256 JWTs. Any broker instance holding the
// same signing secret can verify a token minted by any other instance, so no
// server-side session store exists.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// ErrInvalidToken is returned for every possible verification failure: bad
// signature, expiry, or a token of the wrong kind. A single error kind avoids
// leaking which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claim names used in the broker's own tokens.
const (
	claimEmail    = "email"
	claimProvider = "provider"
	claimName     = "name"

	// claimTokenUse distinguishes session tokens from refresh tokens. A refresh
	// token is never accepted as a session credential.
	claimTokenUse = "token_use"
	useSession    = "session"
	useRefresh    = "refresh"
)

// Issuer mints and verifies session and refresh tokens.
type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	refreshTTL time.Duration

	// now is a field and not a direct time.Now call so it can be overridden in tests.
	now func() time.Time
}

// NewIssuer returns an Issuer that signs tokens with the given secret.
func NewIssuer(secret string, sessionTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), sessionTTL: sessionTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue mints a session token and a refresh token for the given user.
func (i *Issuer) Issue(user oauth.UserInfo) (sessionToken, refreshToken string, err error) {
	sessionToken, err = i.mint(user, useSession, i.sessionTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to mint session token: %w", err)
	}

	refreshToken, err = i.mint(user, useRefresh, i.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to mint refresh token: %w", err)
	}

	return sessionToken, refreshToken, nil
}

// Verify checks the given session token's signature and expiry, and returns the
// identity embedded in it. Refresh tokens are rejected.
func (i *Issuer) Verify(token string) (oauth.UserInfo, error) {
	return i.verify(token, useSession)
}

// Refresh validates the given refresh token and mints a new session token for the
// same identity, without requiring a provider round-trip.
func (i *Issuer) Refresh(refreshToken string) (string, error) {
	user, err := i.verify(refreshToken, useRefresh)
	if err != nil {
		return "", err
	}

	sessionToken, err := i.mint(user, useSession, i.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("failed to mint session token: %w", err)
	}

	return sessionToken, nil
}

// SessionTTL returns the configured session token lifetime.
// The HTTP layer uses it to set cookie expiry.
func (i *Issuer) SessionTTL() time.Duration {
	return i.sessionTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// mint builds and signs a token of the given kind.
func (i *Issuer) mint(user oauth.UserInfo, use string, ttl time.Duration) (string, error) {
	now := i.now()

	token, err := jwt.NewBuilder().
		Subject(user.Subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(claimEmail, user.Email).
		Claim(claimProvider, user.Provider).
		Claim(claimName, user.DisplayName).
		Claim(claimTokenUse, use).
		Build()
	if err != nil {
		return "", fmt.Errorf("error in jwt Build call: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), i.secret))
	if err != nil {
		return "", fmt.Errorf("error in jwt.Sign call: %w", err)
	}

	return string(signed), nil
}

// verify parses the token, checks its signature and expiry, and asserts it is of
// the expected kind. All failures collapse into ErrInvalidToken.
func (i *Issuer) verify(token, expectedUse string) (oauth.UserInfo, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256(), i.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return oauth.UserInfo{}, ErrInvalidToken
	}

	var use string
	if err := parsed.Get(claimTokenUse, &use); err != nil || use != expectedUse {
		return oauth.UserInfo{}, ErrInvalidToken
	}

	subject, found := parsed.Subject()
	if !found || subject == "" {
		return oauth.UserInfo{}, ErrInvalidToken
	}

	user := oauth.UserInfo{Subject: subject}
	// Email, provider and name are informational. Their absence does not fail
	// verification of an otherwise valid token.
	_ = parsed.Get(claimEmail, &user.Email)
	_ = parsed.Get(claimProvider, &user.Provider)
	_ = parsed.Get(claimName, &user.DisplayName)

	return user, nil
}
