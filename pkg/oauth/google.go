package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/miscutils"
)

const (
	// Source: https://developers.google.com/identity/protocols/oauth2/web-server#creatingclient
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	// Source: https://developers.google.com/identity/protocols/oauth2/web-server#exchange-authorization-code
	googleTokenURL = "https://oauth2.googleapis.com/token"
	googleJWKURL   = "https://www.googleapis.com/oauth2/v3/certs"
)

var (
	// parsedGoogleAuthURL removes the need to repeatedly parse the auth URL.
	parsedGoogleAuthURL = miscutils.MustParseURL(googleAuthURL)
	// googleIssuers is the list of valid values for the "iss" (issuer) claim in a Google ID token.
	googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}
)

// Google implements the Provider interface for Google, the consumer-account provider.
//
// Read documentation here: https://developers.google.com/identity/protocols/oauth2/web-server
type Google struct {
	config config.GoogleConfig
	// callbackURL is the URL that Google will hit after the user has authenticated.
	callbackURL string

	httpClient *http.Client
	jwkCache   *jwk.Cache
}

// NewGoogle instantiates a new Google provider instance.
//
// It accepts a context because it periodically fetches Google's JSON Web Keys and the context can be used to cancel
// the underlying fetching goroutine.
func NewGoogle(ctx context.Context, conf config.GoogleConfig, callbackURL string) (*Google, error) {
	// This allows auto-refresh of the JWK as Google keeps rotating them.
	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("error in jwk.NewCache call: %w", err)
	}

	// Register Google's JWK fetch URL.
	if err := jwkCache.Register(ctx, googleJWKURL); err != nil {
		return nil, fmt.Errorf("error in jwkCache.Register call: %w", err)
	}

	return &Google{
		config:      conf,
		callbackURL: callbackURL,
		httpClient:  &http.Client{},
		jwkCache:    jwkCache,
	}, nil
}

func (g *Google) Name() string {
	return ProviderGoogle
}

func (g *Google) GetAuthURL(ctx context.Context, state string) string {
	var u = &url.URL{}
	// Copy the auth URL value into local pointer. This must not modify the original URL variable.
	*u = *parsedGoogleAuthURL

	// Add all query parameters.
	q := u.Query()
	q.Set("client_id", g.config.ClientID)
	q.Set("scope", g.config.Scopes)
	q.Set("response_type", "code")
	q.Set("redirect_uri", g.callbackURL)
	q.Set("include_granted_scopes", "true")
	q.Set("state", state)

	// Request a refresh token if configured to.
	if g.config.OfflineAccess {
		q.Set("access_type", "offline")
		q.Set("prompt", "consent")
	}

	u.RawQuery = q.Encode()
	return u.String()
}

func (g *Google) ClaimsFromCode(ctx context.Context, code string) (RawClaims, error) {
	// Request body per Google's token endpoint contract.
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.config.ClientID)
	form.Set("client_secret", g.config.ClientSecret)
	form.Set("redirect_uri", g.callbackURL)
	form.Set("grant_type", "authorization_code")

	tokenRes, err := postTokenForm(ctx, g.httpClient, g.Name(), googleTokenURL, form)
	if err != nil {
		return nil, err
	}

	return g.decodeIDToken(ctx, tokenRes.IDToken)
}

// decodeIDToken verifies the ID token's signature and standard claims, and returns
// its payload.
func (g *Google) decodeIDToken(ctx context.Context, token string) (RawClaims, error) {
	// Google's documentation for ID token verification:
	// https://developers.google.com/identity/gsi/web/guides/verify-google-id-token

	// Obtain Google's key set.
	set, err := g.jwkCache.Lookup(ctx, googleJWKURL)
	if err != nil {
		return nil, fmt.Errorf("error in jwkCache.Lookup call: %w", err)
	}

	// Parse and validate the token with the obtained key set.
	parsed, err := jwt.Parse([]byte(token), jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithAudience(g.config.ClientID))
	if err != nil {
		return nil, fmt.Errorf("error in jwt.Parse call: %w", err)
	}

	// Validate issuer. This could not be done with jwt.WithIssuer because there are two allowed values.
	if iss, _ := parsed.Issuer(); !slices.Contains(googleIssuers, iss) {
		return nil, fmt.Errorf("jwt has unknown issuer: %s", iss)
	}

	// The signature is verified, so the payload can be decoded as is. This retains
	// every claim Google sent, including the email_verified flag which downstream
	// policy may care about.
	return claimsFromPayload(token)
}
