// Package oauth implements the provider side of the authentication broker: one
// adapter per identity provider behind a common interface, plus the normalization
// of provider-specific claims into one canonical identity record.
package oauth

import (
	"context"
)

// Provider names. These appear in URLs, tokens and the database, so they must stay stable.
const (
	ProviderMicrosoft = "microsoft"
	ProviderGoogle    = "google"
	ProviderApple     = "apple"
)

// Provider represents an OAuth provider.
type Provider interface {
	// Name provides the name of the provider.
	Name() string

	// GetAuthURL returns the URL to the auth page of the provider.
	//
	// The "state" parameter is returned as is in the provider's callback
	// and can be used to correlate it with the original redirect.
	GetAuthURL(ctx context.Context, state string) string

	// ClaimsFromCode exchanges the auth code for the provider's tokens and returns
	// the verified identity claims.
	//
	// The exchange is a single attempt. Retrying a token exchange blindly is not
	// safe because the call is not idempotent, so retry policy belongs to the caller.
	ClaimsFromCode(ctx context.Context, code string) (RawClaims, error)
}

// RawClaims is the provider-specific identity attribute map, exactly as returned
// by the provider's ID token or profile response. It is request-scoped.
type RawClaims map[string]any

// GetString returns the value of the given claim if it is present and is a string.
func (rc RawClaims) GetString(key string) string {
	value, _ := rc[key].(string)
	return value
}

// UserInfo is the canonical identity record, the same shape for every provider.
//
// Provider plus Subject uniquely and stably identify the same human across logins
// from the same provider.
type UserInfo struct {
	// Provider is the name of the provider that authenticated the user.
	Provider string `json:"provider"`
	// Subject is the provider-scoped stable identifier of the user.
	Subject string `json:"subject"`

	// Email of the user. For Apple this may be a private relay address.
	Email string `json:"email"`
	// DisplayName of the user. May be absent.
	DisplayName string `json:"display_name,omitempty"`
	// PictureURL of the user's profile picture. May be absent.
	PictureURL string `json:"picture_url,omitempty"`

	// Raw retains the original provider claims for audit and debugging.
	Raw RawClaims `json:"-"`
}
