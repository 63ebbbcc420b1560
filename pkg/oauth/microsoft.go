package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
)

// Endpoint patterns of the Microsoft identity platform (v2.0). All of them are
// scoped by the directory (tenant) identifier.
//
// Source: https://learn.microsoft.com/en-us/entra/identity-platform/v2-oauth2-auth-code-flow
const (
	microsoftAuthURLFormat  = "https://login.microsoftonline.com/%s/oauth2/v2.0/authorize"
	microsoftTokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	microsoftJWKURLFormat   = "https://login.microsoftonline.com/%s/discovery/v2.0/keys"

	// microsoftIssuerPrefix and microsoftIssuerSuffix bound the "iss" claim of a v2.0
	// ID token. The middle part is the tenant GUID, which may differ from the
	// configured tenant value (a domain name is also accepted there), so the issuer
	// is validated by shape rather than by exact match.
	microsoftIssuerPrefix = "https://login.microsoftonline.com/"
	microsoftIssuerSuffix = "/v2.0"
)

// Microsoft implements the Provider interface for the Microsoft identity platform,
// the enterprise-directory provider.
type Microsoft struct {
	config config.MicrosoftConfig
	// callbackURL is the URL that Microsoft will hit after the user has authenticated.
	callbackURL string

	// Tenant-scoped endpoints, computed once at construction.
	authURL  *url.URL
	tokenURL string
	jwkURL   string

	httpClient *http.Client
	jwkCache   *jwk.Cache
}

// NewMicrosoft instantiates a new Microsoft provider instance.
//
// It accepts a context because it periodically fetches the tenant's JSON Web Keys and the context can be used to
// cancel the underlying fetching goroutine.
func NewMicrosoft(ctx context.Context, conf config.MicrosoftConfig, callbackURL string) (*Microsoft, error) {
	authURL, err := url.Parse(fmt.Sprintf(microsoftAuthURLFormat, conf.TenantID))
	if err != nil {
		return nil, fmt.Errorf("error in url.Parse call: %w", err)
	}

	jwkURL := fmt.Sprintf(microsoftJWKURLFormat, conf.TenantID)

	// This allows auto-refresh of the JWK as Microsoft keeps rotating them.
	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("error in jwk.NewCache call: %w", err)
	}

	// Register the tenant's JWK fetch URL.
	if err := jwkCache.Register(ctx, jwkURL); err != nil {
		return nil, fmt.Errorf("error in jwkCache.Register call: %w", err)
	}

	return &Microsoft{
		config:      conf,
		callbackURL: callbackURL,
		authURL:     authURL,
		tokenURL:    fmt.Sprintf(microsoftTokenURLFormat, conf.TenantID),
		jwkURL:      jwkURL,
		httpClient:  &http.Client{},
		jwkCache:    jwkCache,
	}, nil
}

func (m *Microsoft) Name() string {
	return ProviderMicrosoft
}

func (m *Microsoft) GetAuthURL(ctx context.Context, state string) string {
	var u = &url.URL{}
	// Copy the auth URL value into local pointer. This must not modify the original URL variable.
	*u = *m.authURL

	// Add all query parameters.
	q := u.Query()
	q.Set("client_id", m.config.ClientID)
	q.Set("scope", m.config.Scopes)
	q.Set("response_type", "code")
	q.Set("response_mode", "query")
	q.Set("redirect_uri", m.callbackURL)
	q.Set("state", state)

	u.RawQuery = q.Encode()
	return u.String()
}

func (m *Microsoft) ClaimsFromCode(ctx context.Context, code string) (RawClaims, error) {
	// Request body per the Microsoft identity platform token endpoint contract.
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)
	form.Set("redirect_uri", m.callbackURL)
	form.Set("grant_type", "authorization_code")
	form.Set("scope", m.config.Scopes)

	tokenRes, err := postTokenForm(ctx, m.httpClient, m.Name(), m.tokenURL, form)
	if err != nil {
		return nil, err
	}

	return m.decodeIDToken(ctx, tokenRes.IDToken)
}

// decodeIDToken verifies the ID token's signature and standard claims, and returns
// its payload.
func (m *Microsoft) decodeIDToken(ctx context.Context, token string) (RawClaims, error) {
	// Obtain the tenant's key set.
	set, err := m.jwkCache.Lookup(ctx, m.jwkURL)
	if err != nil {
		return nil, fmt.Errorf("error in jwkCache.Lookup call: %w", err)
	}

	// Parse and validate the token with the obtained key set.
	parsed, err := jwt.Parse([]byte(token), jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithAudience(m.config.ClientID))
	if err != nil {
		return nil, fmt.Errorf("error in jwt.Parse call: %w", err)
	}

	// Validate the issuer shape. See the comment on microsoftIssuerPrefix.
	if iss, _ := parsed.Issuer(); !strings.HasPrefix(iss, microsoftIssuerPrefix) || !strings.HasSuffix(iss, microsoftIssuerSuffix) {
		return nil, fmt.Errorf("jwt has unknown issuer: %s", iss)
	}

	// The signature is verified, so the payload can be decoded as is.
	return claimsFromPayload(token)
}
