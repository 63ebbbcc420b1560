package config

import (
	"time"
)

// Config represents the configs model.
type Config struct {
	// Application is the model of application configs.
	Application struct {
		// Name of the application.
		Name string `yaml:"name" mapstructure:"name"`
		// PProf is a flag to enable/disable profiling.
		PProf bool `yaml:"pprof" mapstructure:"pprof"`
		// BaseURL is the public address of the application, example: https://auth.pokertherapist.app
		// Provider callback URLs are derived from it.
		BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	} `yaml:"application" mapstructure:"application"`

	// HTTPServer is the model of the HTTP Server configs.
	HTTPServer struct {
		// Addr is the address of the HTTP server.
		Addr string `yaml:"addr" mapstructure:"addr"`
	} `yaml:"http_server" mapstructure:"http_server"`

	// Logger is the model of the application logger configs.
	Logger struct {
		// Level of the logger.
		Level string `yaml:"level" mapstructure:"level"`
		// Pretty is a flag that dictates whether the log output should be pretty (human-readable).
		Pretty bool `yaml:"pretty" mapstructure:"pretty"`
	} `yaml:"logger" mapstructure:"logger"`

	// Database is the model of the Postgres configs.
	Database struct {
		Addr     string `yaml:"addr" mapstructure:"addr"`
		Username string `yaml:"username" mapstructure:"username"`
		Password string `yaml:"password" mapstructure:"password"`
		Database string `yaml:"database" mapstructure:"database"`
	} `yaml:"database" mapstructure:"database"`

	// AllowedRedirectURLs is the list of URLs the broker may redirect to after the OAuth flow is complete.
	AllowedRedirectURLs []string `yaml:"allowed_redirect_urls" mapstructure:"allowed_redirect_urls"`

	// Auth holds the broker's own token configs.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// OAuthMicrosoft holds the enterprise-directory provider configs.
	OAuthMicrosoft MicrosoftConfig `yaml:"oauth_microsoft" mapstructure:"oauth_microsoft"`
	// OAuthGoogle holds the consumer provider configs.
	OAuthGoogle GoogleConfig `yaml:"oauth_google" mapstructure:"oauth_google"`
	// OAuthApple holds the privacy-preserving provider configs.
	OAuthApple AppleConfig `yaml:"oauth_apple" mapstructure:"oauth_apple"`
}

// AuthConfig holds the secrets and lifetimes for the broker's self-issued tokens.
type AuthConfig struct {
	// SigningSecret signs session and refresh tokens. It must be shared by all instances.
	SigningSecret string `yaml:"signing_secret" mapstructure:"signing_secret"`
	// StateSecret signs the OAuth state parameter. It must be shared by all instances.
	StateSecret string `yaml:"state_secret" mapstructure:"state_secret"`

	// SessionTTL is the lifetime of a session token.
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	// RefreshTTL is the lifetime of a refresh token. It should be materially longer than SessionTTL.
	RefreshTTL time.Duration `yaml:"refresh_ttl" mapstructure:"refresh_ttl"`
	// StateTTL is the max allowed time for a provider to invoke the callback API.
	StateTTL time.Duration `yaml:"state_ttl" mapstructure:"state_ttl"`
}

// MicrosoftConfig holds the configs of the Microsoft identity platform provider.
type MicrosoftConfig struct {
	// TenantID is the directory (tenant) identifier. It scopes the authorization endpoints.
	TenantID string `yaml:"tenant_id" mapstructure:"tenant_id"`
	// ClientID is the OAuth client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OAuth client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// Scopes are the OAuth scopes, space separated.
	Scopes string `yaml:"scopes" mapstructure:"scopes"`
}

// GoogleConfig holds the configs of the Google provider.
type GoogleConfig struct {
	// ClientID is the OAuth client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OAuth client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// Scopes are the OAuth scopes, space separated.
	Scopes string `yaml:"scopes" mapstructure:"scopes"`
	// OfflineAccess requests a refresh token from Google.
	OfflineAccess bool `yaml:"offline_access" mapstructure:"offline_access"`
}

// AppleConfig holds the configs of the Sign in with Apple provider.
type AppleConfig struct {
	// TeamID is the Apple developer team identifier.
	TeamID string `yaml:"team_id" mapstructure:"team_id"`
	// KeyID identifies the private key registered with Apple.
	KeyID string `yaml:"key_id" mapstructure:"key_id"`
	// PrivateKeyPEM is the PEM-encoded ES256 private key used to sign client assertions.
	PrivateKeyPEM string `yaml:"private_key_pem" mapstructure:"private_key_pem"`
	// ClientID is the services identifier, example: app.pokertherapist.signin
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// Scopes are the OAuth scopes, space separated.
	Scopes string `yaml:"scopes" mapstructure:"scopes"`
	// AssertionTTL is the lifetime of a client assertion. Apple rejects anything above 6 months,
	// but a few minutes is all an assertion is ever needed for.
	AssertionTTL time.Duration `yaml:"assertion_ttl" mapstructure:"assertion_ttl"`
}

// Complete reports whether every field required for the Microsoft flow is usable.
func (m MicrosoftConfig) Complete() bool {
	return isUsable(m.TenantID, m.ClientID, m.ClientSecret, m.Scopes)
}

// Complete reports whether every field required for the Google flow is usable.
func (g GoogleConfig) Complete() bool {
	return isUsable(g.ClientID, g.ClientSecret, g.Scopes)
}

// Complete reports whether every field required for the Apple flow is usable.
func (a AppleConfig) Complete() bool {
	return isUsable(a.TeamID, a.KeyID, a.PrivateKeyPEM, a.ClientID, a.Scopes)
}

// Load loads and returns the config value.
func Load() Config {
	return loadWithViper()
}

// LoadMock provides a mock instance of the config for testing purposes.
func LoadMock() Config {
	cfg := Config{}

	cfg.Application.Name = "example-application"
	cfg.Application.BaseURL = "http://localhost:8080"
	cfg.HTTPServer.Addr = "localhost:8080"

	cfg.Logger.Level = "debug"
	cfg.Logger.Pretty = true

	cfg.AllowedRedirectURLs = []string{"http://localhost:3000/auth"}

	cfg.Auth.SigningSecret = "mock-signing-secret"
	cfg.Auth.StateSecret = "mock-state-secret"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.RefreshTTL = 30 * 24 * time.Hour
	cfg.Auth.StateTTL = 10 * time.Minute

	return cfg
}
