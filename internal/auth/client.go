package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
)

// Credentials identify an integration application and the organization it belongs to.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Slug         string
	Domain       string
}

// TokenSource issues new access tokens.
type TokenSource interface {
	GetAccessToken(ctx context.Context, creds Credentials) (string, error)
}

// Client requests tokens with the OAuth2 client-credentials grant.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string // overrides https://{slug}.{domain} when set
}

// NewClient returns a token client. baseURL may be empty.
func NewClient(httpClient *nethttp.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// GetAccessToken posts the client credentials to /oauth/token and returns the bearer string.
func (c *Client) GetAccessToken(ctx context.Context, creds Credentials) (string, error) {
	base := c.baseURL
	if base == "" {
		if creds.Slug == "" || creds.Domain == "" {
			return "", fmt.Errorf("organization slug and domain are required to request a token")
		}
		base = fmt.Sprintf("https://%s.%s", creds.Slug, creds.Domain)
	}

	body, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, base+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}

	return tr.AccessToken, nil
}
