package auth

import (
	"context"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// mockProvider is a mock implementation of the oauth.Provider interface.
type mockProvider struct {
	// To mock the Name method.
	name string
	// To mock the GetAuthURL method.
	argState string
	authURL  string
	// To mock the ClaimsFromCode method.
	argCode           string
	claimsFromCodeHit bool
	errClaimsFromCode error
	claims            oauth.RawClaims
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) GetAuthURL(c context.Context, state string) string {
	m.argState = state
	return m.authURL
}

func (m *mockProvider) ClaimsFromCode(c context.Context, code string) (oauth.RawClaims, error) {
	m.argCode = code
	m.claimsFromCodeHit = true
	if m.errClaimsFromCode != nil {
		return nil, m.errClaimsFromCode
	}
	return m.claims, nil
}
