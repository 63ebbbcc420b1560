package oauth

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an operation is attempted on a provider whose
// configuration is incomplete. The orchestrator never offers such a provider, so
// hitting this error means the caller bypassed provider discovery.
var ErrNotConfigured = errors.New("provider is not configured")

// Category is the coarse classification of a provider failure.
type Category string

const (
	// CategoryInvalidGrant means the provider rejected the authorization code.
	CategoryInvalidGrant Category = "invalid_grant"
	// CategoryInvalidClient means the provider rejected the broker's own credentials.
	CategoryInvalidClient Category = "invalid_client"
	// CategoryUpstreamUnavailable means the provider could not be reached or failed internally.
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
	// CategoryMalformedClaims means the provider's response is missing the mandatory
	// subject identifier.
	CategoryMalformedClaims Category = "malformed_claims"
)

// ProviderError is returned when a provider rejects the token exchange or is
// unreachable. It carries only the coarse category and upstream status code,
// never any credential material.
type ProviderError struct {
	// Provider is the name of the provider that failed.
	Provider string
	// Category is the coarse classification of the failure.
	Category Category
	// StatusCode is the upstream HTTP status code, if a response was received.
	StatusCode int
}

// Error makes ProviderError implement the error interface.
func (p *ProviderError) Error() string {
	if p.StatusCode == 0 {
		return fmt.Sprintf("provider %s failed: %s", p.Provider, p.Category)
	}
	return fmt.Sprintf("provider %s failed: %s (status %d)", p.Provider, p.Category, p.StatusCode)
}
