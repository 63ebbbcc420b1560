package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/auth"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/database"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/handler"
	ihttp "github.com/JohnDaWalka/Poker-Therapist-sub000/internal/http"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/middleware"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/repository"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/session"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/state"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/logger"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

func main() {
	// Initialize basic dependencies.
	conf := config.Load()
	logger.Init(os.Stdout, conf.Logger.Level, conf.Logger.Pretty)

	// This context cancels the JWK refresh goroutines of the providers.
	ctx := context.Background()

	// Construct only the fully configured providers. A half-configured provider is
	// simply not offered, it is not a startup error.
	providers := buildProviders(ctx, conf)
	if len(providers) == 0 {
		slog.Warn("no provider is fully configured, logins will not be possible")
	}

	// The broker's own token machinery.
	states := state.NewCodec(conf.Auth.StateSecret, conf.Auth.StateTTL)
	sessions := session.NewIssuer(conf.Auth.SigningSecret, conf.Auth.SessionTTL, conf.Auth.RefreshTTL)
	service := auth.NewService(conf.AllowedRedirectURLs, states, sessions, providers...)

	// Connect to the database and run migrations.
	db, err := database.Connect(conf)
	if err != nil {
		slog.Error("failed to connect to the database", "err", err)
		panic(err)
	}
	repo := repository.NewRepository(db)

	// Initialize the HTTP server.
	server := &ihttp.Server{
		Config:     conf,
		Middleware: middleware.Middleware{},
		Handler:    handler.NewHandler(conf, service, repo),
	}

	// This internally calls ListenAndServe.
	// This is a blocking call and will panic if the server is unable to start.
	server.Start()
}

// buildProviders instantiates every provider whose configuration is complete.
func buildProviders(ctx context.Context, conf config.Config) []oauth.Provider {
	var providers []oauth.Provider

	if conf.OAuthMicrosoft.Complete() {
		microsoft, err := oauth.NewMicrosoft(ctx, conf.OAuthMicrosoft, callbackURL(conf, oauth.ProviderMicrosoft))
		if err != nil {
			slog.Error("failed to create Microsoft provider", "err", err)
			panic(err)
		}
		providers = append(providers, microsoft)
	}

	if conf.OAuthGoogle.Complete() {
		google, err := oauth.NewGoogle(ctx, conf.OAuthGoogle, callbackURL(conf, oauth.ProviderGoogle))
		if err != nil {
			slog.Error("failed to create Google provider", "err", err)
			panic(err)
		}
		providers = append(providers, google)
	}

	if conf.OAuthApple.Complete() {
		apple, err := oauth.NewApple(ctx, conf.OAuthApple, callbackURL(conf, oauth.ProviderApple))
		if err != nil {
			slog.Error("failed to create Apple provider", "err", err)
			panic(err)
		}
		providers = append(providers, apple)
	}

	return providers
}

// callbackURL derives the provider callback URL from the application's base URL.
func callbackURL(conf config.Config, provider string) string {
	return fmt.Sprintf("%s/api/auth/%s/callback", conf.Application.BaseURL, provider)
}
