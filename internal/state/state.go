// Package state implements the self-contained "state" parameter used for CSRF
// protection during the OAuth flow.
//
// A state token embeds its own nonce, timestamps and client callback URL, and is
// signed with a server-held secret. This removes the need for a server-side state
// store, so any broker instance can validate a token minted by any other instance.
package state

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidState is returned for every possible validation failure: bad signature,
// expired token or callback URL mismatch. A single error kind avoids leaking which
// check failed.
var ErrInvalidState = errors.New("invalid state token")

// nonceSize is the number of random bytes in a state token. 24 bytes is 192 bits
// of entropy.
const nonceSize = 24

// payload is the signed content of a state token.
type payload struct {
	Nonce             string `json:"nonce"`
	IssuedAt          int64  `json:"iat"`
	ExpiresAt         int64  `json:"exp"`
	ClientCallbackURL string `json:"ccu"`
}

// Codec mints and validates state tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration

	// now is a field and not a direct time.Now call so it can be overridden in tests.
	now func() time.Time
}

// NewCodec returns a Codec that signs tokens with the given secret and expires
// them after the given TTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new signed state token bound to the given client callback URL.
func (c *Codec) Issue(clientCallbackURL string) (string, error) {
	// Random nonce. This makes every token unique.
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("error in rand.Read call: %w", err)
	}

	now := c.now()
	body := payload{
		Nonce:             base64.RawURLEncoding.EncodeToString(nonce),
		IssuedAt:          now.Unix(),
		ExpiresAt:         now.Add(c.ttl).Unix(),
		ClientCallbackURL: clientCallbackURL,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal call: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(bodyBytes)
	return encoded + "." + c.sign(encoded), nil
}

// Validate verifies the token's signature, expiry and callback URL binding, and
// returns the client callback URL embedded in the token.
//
// It fails closed: every failure mode yields ErrInvalidState.
func (c *Codec) Validate(token, expectedCallbackURL string) (string, error) {
	encoded, tag, found := strings.Cut(token, ".")
	if !found {
		return "", ErrInvalidState
	}

	// Signature check first. Nothing in the token can be trusted before this.
	if !hmac.Equal([]byte(tag), []byte(c.sign(encoded))) {
		return "", ErrInvalidState
	}

	bodyBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidState
	}

	var body payload
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return "", ErrInvalidState
	}

	// Expiry check.
	if c.now().Unix() >= body.ExpiresAt {
		return "", ErrInvalidState
	}

	// The token must be presented on the same callback it was issued for.
	if expectedCallbackURL != "" && body.ClientCallbackURL != expectedCallbackURL {
		return "", ErrInvalidState
	}

	return body.ClientCallbackURL, nil
}

// sign computes the base64 encoded HMAC-SHA256 tag of the given string.
func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
