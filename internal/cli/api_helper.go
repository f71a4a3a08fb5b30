package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/api"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/auth"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/config"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/http"
)

// session is everything an export command needs to talk to the platform.
type session struct {
	cfg    *config.Config
	client *api.Client
	tokens *auth.Refresher
	token  auth.Token
}

// currentOverrides returns the credential flags given on the command line.
func currentOverrides() config.Overrides {
	return config.Overrides{
		Organization: organization,
		Domain:       domain,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  accessToken,
	}
}

// loadConfig loads the config file and merges environment variables and flags over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.MergeWithFlags(currentOverrides())

	if http.NeedsProxyPassword(cfg) {
		pw, err := newPrompter(os.Stdin, os.Stderr).askSecret("Proxy password for "+cfg.ProxyUser, "")
		if err != nil {
			return nil, err
		}
		cfg.ProxyPassword = pw
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newSession builds the API client and the token refresher, and makes sure an
// access token is available. Without --access-token one is requested with the
// client credentials.
func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	creds := auth.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Slug:         cfg.Organization,
		Domain:       cfg.Domain,
	}

	var src auth.TokenSource
	if cfg.HasClientCredentials() {
		httpClient, err := http.ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
		src = auth.NewClient(http.WithRetries(httpClient, cfg.HTTPRetries), cfg.BaseURL)
	}

	raw := cfg.AccessToken
	if raw == "" {
		if src == nil {
			return nil, config.ErrMissingCredentials
		}
		GetLogger().Debug().Str("organization", cfg.Organization).Msg("Requesting access token")
		if raw, err = src.GetAccessToken(ctx, creds); err != nil {
			return nil, fmt.Errorf("unable to get access token: %w", err)
		}
	}

	tok, err := auth.ParseToken(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	client.SetAccessToken(tok.Raw)

	return &session{
		cfg:    cfg,
		client: client,
		tokens: auth.NewRefresher(src, creds),
		token:  tok,
	}, nil
}
