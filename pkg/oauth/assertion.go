package oauth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
)

// appleAssertionAudience is the required "aud" claim of an Apple client assertion.
//
// Source: https://developer.apple.com/documentation/accountorganizationaldatasharing/creating-a-client-secret
const appleAssertionAudience = "https://appleid.apple.com"

// maxAssertionTTL is Apple's upper bound on the lifetime of a client assertion.
const maxAssertionTTL = 6 * 30 * 24 * time.Hour

// SignClientAssertion creates the short-lived signed JWT that Apple requires in
// place of a static client secret on every token-exchange call.
//
// It is a pure function of its inputs: the clock is an explicit parameter and no
// result is ever cached. Callers must invoke it freshly immediately before each
// exchange, because a stale assertion is routinely rejected by Apple.
func SignClientAssertion(conf config.AppleConfig, now time.Time) (string, error) {
	ttl := conf.AssertionTTL
	if ttl <= 0 || ttl > maxAssertionTTL {
		ttl = 5 * time.Minute
	}

	// Claim set per Apple's client secret contract.
	token, err := jwt.NewBuilder().
		Issuer(conf.TeamID).
		Subject(conf.ClientID).
		Audience([]string{appleAssertionAudience}).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		JwtID(uuid.NewString()).
		Build()
	if err != nil {
		return "", fmt.Errorf("error in jwt Build call: %w", err)
	}

	// Parse the configured PEM private key.
	key, err := jwk.ParseKey([]byte(conf.PrivateKeyPEM), jwk.WithPEM(true))
	if err != nil {
		return "", fmt.Errorf("error in jwk.ParseKey call: %w", err)
	}

	// Apple matches the assertion against the registered key by its key ID, so the
	// "kid" header must be present.
	if err := key.Set(jwk.KeyIDKey, conf.KeyID); err != nil {
		return "", fmt.Errorf("error in key Set call: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), key))
	if err != nil {
		return "", fmt.Errorf("error in jwt.Sign call: %w", err)
	}

	return string(signed), nil
}
