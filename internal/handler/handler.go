package handler

import (
	"context"
	"net/http"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/auth"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/repository"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/httputils"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// Cookie names for the broker's own tokens.
const (
	sessionCookieName = "session"
	refreshCookieName = "refresh"
)

// Service is the part of the auth orchestrator that the handlers consume.
type Service interface {
	// AvailableProviders returns the names of all usable providers.
	AvailableProviders() []string
	// BeginLogin returns the provider's authorization URL and the minted state.
	BeginLogin(ctx context.Context, provider, clientCallbackURL string) (authURL, state string, err error)
	// CompleteLogin finishes the flow and issues the broker's own tokens.
	CompleteLogin(ctx context.Context, in auth.CallbackInput) (auth.LoginResult, error)
	// VerifySession checks a session token and returns the embedded identity.
	VerifySession(token string) (oauth.UserInfo, error)
	// RefreshSession exchanges a refresh token for a new session token.
	RefreshSession(refreshToken string) (string, error)
}

// Handler encapsulates all REST handlers.
type Handler struct {
	config  config.Config
	service Service
	repo    repository.Repository
}

// NewHandler creates a new Handler instance.
func NewHandler(config config.Config, service Service, repo repository.Repository) *Handler {
	return &Handler{config: config, service: service, repo: repo}
}

// NotFound handler can be used to serve any unrecognized routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httputils.WriteErr(w, errutils.NotFound())
}

// Health returns 200 if everything is running fine.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	info := map[string]string{}
	httputils.Write(w, http.StatusOK, nil, info)
}

// Providers lists the providers a client may begin a login with.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"providers": h.service.AvailableProviders()}
	httputils.Write(w, http.StatusOK, nil, body)
}
