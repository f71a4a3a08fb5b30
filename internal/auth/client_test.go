package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetAccessToken(t *testing.T) {
	var got tokenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc.def.ghi","token_type":"bearer","expires_in":14400,"scope":"market:all"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL+"/")
	token, err := client.GetAccessToken(context.Background(), Credentials{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "abc.def.ghi", token)
	assert.Equal(t, "client_credentials", got.GrantType)
	assert.Equal(t, "id", got.ClientID)
	assert.Equal(t, "secret", got.ClientSecret)
}

func TestClientGetAccessTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"title":"invalid_client"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	_, err := client.GetAccessToken(context.Background(), Credentials{ClientID: "id", ClientSecret: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestClientGetAccessTokenEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.Client(), server.URL).GetAccessToken(context.Background(), Credentials{})
	assert.ErrorContains(t, err, "no access_token")
}

func TestClientRequiresSlugWithoutBaseURL(t *testing.T) {
	_, err := NewClient(http.DefaultClient, "").GetAccessToken(context.Background(), Credentials{ClientID: "id"})
	assert.ErrorContains(t, err, "slug and domain are required")
}
