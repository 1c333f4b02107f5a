package main

import (
	"fmt"
	"os"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/golden-vcr/implicit"
	"github.com/golden-vcr/implicit/internal/accounts"
	"github.com/golden-vcr/implicit/internal/events"
	"github.com/golden-vcr/implicit/internal/oauth2client"
	"github.com/golden-vcr/implicit/internal/strategy"
	"github.com/golden-vcr/implicit/internal/twitch"
	"github.com/golden-vcr/implicit/internal/userauth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/golden-vcr/server-common/rmq"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5006"`

	Provider         string `env:"PROVIDER" default:"scriptr"`
	AuthorizationURL string `env:"AUTHORIZATION_URL"`
	CallbackURL      string `env:"CALLBACK_URL" default:"/auth/callback"`
	ClientId         string `env:"CLIENT_ID" required:"true"`
	Scopes           string `env:"SCOPES"`
	ScopeSeparator   string `env:"SCOPE_SEPARATOR"`
	SkipUserProfile  bool   `env:"SKIP_USER_PROFILE" default:"true"`
	ProfileURL       string `env:"PROFILE_URL"`
	TrustProxy       bool   `env:"TRUST_PROXY" default:"false"`

	RmqHost     string `env:"RMQ_HOST" required:"true"`
	RmqPort     int    `env:"RMQ_PORT" required:"true"`
	RmqVhost    string `env:"RMQ_VHOST" required:"true"`
	RmqUser     string `env:"RMQ_USER" required:"true"`
	RmqPassword string `env:"RMQ_PASSWORD" required:"true"`
	RmqExchange string `env:"RMQ_EXCHANGE" default:"auth-events"`
}

func main() {
	app, ctx := entry.NewApplication("implicit")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// Resolve the authorization server we're delegating to, allowing its defaults to
	// be overridden by config
	provider, err := implicit.LookupProvider(config.Provider)
	if err != nil {
		app.Fail("Failed to resolve provider", err)
	}
	authorizationURL := provider.AuthorizationURL
	if config.AuthorizationURL != "" {
		authorizationURL = config.AuthorizationURL
	}
	profileURL := provider.ProfileURL
	if config.ProfileURL != "" {
		profileURL = config.ProfileURL
	}
	scopes := provider.DefaultScopes
	if config.Scopes != "" {
		scopes = implicit.ParseScopes(config.Scopes)
	}

	strategyConfig, err := strategy.NewConfig(strategy.Options{
		Name:             provider.Name,
		AuthorizationURL: authorizationURL,
		CallbackURL:      config.CallbackURL,
		ClientId:         config.ClientId,
		Scopes:           scopes,
		ScopeSeparator:   config.ScopeSeparator,
		LoadUserProfile:  !config.SkipUserProfile,
		TrustProxy:       config.TrustProxy,
	})
	if err != nil {
		app.Fail("Failed to configure authentication strategy", err)
	}

	// Initialize an OAuth2 client that will build authorize URLs (and, for generic
	// providers, fetch user profiles)
	oauthClient := oauth2client.New(oauth2client.Options{
		Provider:         provider.Name,
		ClientId:         strategyConfig.ClientId(),
		ClientSecret:     strategyConfig.ClientSecret(),
		AuthorizationURL: strategyConfig.AuthorizationURL(),
		TokenURL:         strategyConfig.TokenURL(),
		ProfileURL:       profileURL,
	})
	var profiles strategy.ProfileFetcher
	if !strategyConfig.SkipUserProfile() {
		if provider.Name == implicit.Twitch.Name {
			profiles = twitch.NewProfileFetcher(config.ClientId)
		} else if profileURL != "" {
			profiles = oauthClient
		} else {
			app.Fail("Failed to configure profile loading", fmt.Errorf("PROFILE_URL is required for provider '%s' unless SKIP_USER_PROFILE is set", provider.Name))
		}
	}

	// Initialize an AMQP producer so we can announce logins to other services
	amqpConn, err := amqp.Dial(rmq.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
	if err != nil {
		app.Fail("Failed to connect to AMQP server", err)
	}
	defer amqpConn.Close()
	producer, err := events.NewProducer(amqpConn, config.RmqExchange)
	if err != nil {
		app.Fail("Failed to initialize AMQP producer", err)
	}
	defer producer.Close()

	// Our verify callback decides who each access token identifies
	verifier := accounts.NewVerifier(provider.Name, scopes, producer)
	authenticator, err := strategy.New(strategyConfig, oauthClient, profiles, verifier.Verify)
	if err != nil {
		app.Fail("Failed to initialize authentication strategy", err)
	}
	app.Log().Info(
		"Initialized implicit grant strategy",
		"provider", provider.Name,
		"authorizationURL", strategyConfig.AuthorizationURL(),
		"callbackURL", strategyConfig.CallbackURL(),
		"scopes", scopes,
		"skipUserProfile", strategyConfig.SkipUserProfile(),
	)

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()

	// The user can GET /auth/start to be redirected to the authorization server, which
	// will send them back to GET /auth/callback with an access token (or an error)
	userauthServer := userauth.NewServer(authenticator)
	userauthServer.RegisterRoutes(r)

	// Handle incoming HTTP connections until our top-level context is canceled, at
	// which point shut down cleanly
	entry.RunServer(ctx, app.Log(), r, config.BindAddr, config.ListenPort)
}
