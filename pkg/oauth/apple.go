package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/miscutils"
)

// Source: https://developer.apple.com/documentation/sign_in_with_apple/sign_in_with_apple_rest_api
const (
	appleAuthURL  = "https://appleid.apple.com/auth/authorize"
	appleTokenURL = "https://appleid.apple.com/auth/token"
	appleJWKURL   = "https://appleid.apple.com/auth/keys"

	// appleIssuer is the only valid value for the "iss" claim in an Apple ID token.
	appleIssuer = "https://appleid.apple.com"
)

// parsedAppleAuthURL removes the need to repeatedly parse the auth URL.
var parsedAppleAuthURL = miscutils.MustParseURL(appleAuthURL)

// Apple implements the Provider interface for Sign in with Apple, the
// privacy-preserving provider.
//
// Apple differs from the other providers in two ways. It authenticates the broker
// with a freshly signed client assertion instead of a static secret, and it sends
// the user's name only once, as a form field on the very first authorization for a
// given subject, never in the ID token.
type Apple struct {
	config config.AppleConfig
	// callbackURL is the URL that Apple will hit after the user has authenticated.
	callbackURL string

	httpClient *http.Client
	jwkCache   *jwk.Cache

	// now is a field and not a direct time.Now call so assertion freshness can be
	// controlled in tests.
	now func() time.Time
}

// NewApple instantiates a new Apple provider instance.
//
// It accepts a context because it periodically fetches Apple's JSON Web Keys and the context can be used to cancel
// the underlying fetching goroutine.
func NewApple(ctx context.Context, conf config.AppleConfig, callbackURL string) (*Apple, error) {
	// This allows auto-refresh of the JWK as Apple keeps rotating them.
	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("error in jwk.NewCache call: %w", err)
	}

	// Register Apple's JWK fetch URL.
	if err := jwkCache.Register(ctx, appleJWKURL); err != nil {
		return nil, fmt.Errorf("error in jwkCache.Register call: %w", err)
	}

	return &Apple{
		config:      conf,
		callbackURL: callbackURL,
		httpClient:  &http.Client{},
		jwkCache:    jwkCache,
		now:         time.Now,
	}, nil
}

func (a *Apple) Name() string {
	return ProviderApple
}

func (a *Apple) GetAuthURL(ctx context.Context, state string) string {
	var u = &url.URL{}
	// Copy the auth URL value into local pointer. This must not modify the original URL variable.
	*u = *parsedAppleAuthURL

	// Add all query parameters.
	q := u.Query()
	q.Set("client_id", a.config.ClientID)
	q.Set("scope", a.config.Scopes)
	q.Set("response_type", "code")
	q.Set("redirect_uri", a.callbackURL)
	q.Set("state", state)

	// Apple requires form_post whenever the name or email scope is requested, which
	// means the callback arrives as a POST instead of a GET.
	if a.config.Scopes != "" {
		q.Set("response_mode", "form_post")
	}

	u.RawQuery = q.Encode()
	return u.String()
}

func (a *Apple) ClaimsFromCode(ctx context.Context, code string) (RawClaims, error) {
	// A fresh assertion is signed immediately before every exchange. Its window is
	// short, so caching one across calls would get it rejected.
	assertion, err := SignClientAssertion(a.config, a.now())
	if err != nil {
		return nil, fmt.Errorf("error in SignClientAssertion call: %w", err)
	}

	// Request body per Apple's token endpoint contract. The client assertion takes
	// the place of a static client secret.
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", a.config.ClientID)
	form.Set("client_secret", assertion)
	form.Set("redirect_uri", a.callbackURL)
	form.Set("grant_type", "authorization_code")

	tokenRes, err := postTokenForm(ctx, a.httpClient, a.Name(), appleTokenURL, form)
	if err != nil {
		return nil, err
	}

	return a.decodeIDToken(ctx, tokenRes.IDToken)
}

// decodeIDToken verifies the ID token's signature and standard claims, and returns
// its payload.
func (a *Apple) decodeIDToken(ctx context.Context, token string) (RawClaims, error) {
	// Obtain Apple's key set.
	set, err := a.jwkCache.Lookup(ctx, appleJWKURL)
	if err != nil {
		return nil, fmt.Errorf("error in jwkCache.Lookup call: %w", err)
	}

	// Parse and validate the token with the obtained key set. Unlike Google, Apple
	// has exactly one valid issuer, so it can be checked right in the Parse call.
	if _, err := jwt.Parse([]byte(token), jwt.WithKeySet(set), jwt.WithValidate(true),
		jwt.WithAudience(a.config.ClientID), jwt.WithIssuer(appleIssuer)); err != nil {
		return nil, fmt.Errorf("error in jwt.Parse call: %w", err)
	}

	// The signature is verified, so the payload can be decoded as is. This retains
	// claims like email_verified and is_private_email which downstream policy may
	// care about.
	return claimsFromPayload(token)
}

// MergeUserPayload attaches Apple's one-time "user" form field to the given claims
// under the "user" key.
//
// Apple sends this field only on the very first authorization for a subject. On all
// later logins it is absent, in which case the claims are returned unchanged.
func MergeUserPayload(claims RawClaims, userPayload string) RawClaims {
	userPayload = strings.TrimSpace(userPayload)
	if userPayload == "" || claims == nil {
		return claims
	}
	claims["user"] = userPayload
	return claims
}
