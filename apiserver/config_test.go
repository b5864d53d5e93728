package main

import (
	"context"
	"testing"

	"github.com/krancour/accounts/apiserver/internal/lib/auth0"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLogoutURL(t *testing.T) {
	testCases := []struct {
		name         string
		auth0Config  auth0.Config
		oauth2Config *oauth2.Config
		expected     string
	}{
		{
			name:        "oidc disabled",
			auth0Config: auth0.Config{Domain: "example.auth0.com"},
			expected:    "",
		},
		{
			name: "no auth0 domain",
			oauth2Config: &oauth2.Config{
				ClientID:    "abc",
				RedirectURL: "https://accounts.example.com/callback",
			},
			expected: "",
		},
		{
			name:        "auth0 logout",
			auth0Config: auth0.Config{Domain: "example.auth0.com"},
			oauth2Config: &oauth2.Config{
				ClientID:    "abc",
				RedirectURL: "https://accounts.example.com/callback",
			},
			expected: "https://example.auth0.com/v2/logout?client_id=abc&" +
				"returnTo=https%3A%2F%2Faccounts.example.com%2F",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(
				t,
				testCase.expected,
				logoutURL(testCase.auth0Config, testCase.oauth2Config),
			)
		})
	}
}

func TestGetSessionsStoreFromEnvironmentRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSIONS_BACKEND", "memcached")
	_, err := getSessionsStoreFromEnvironment(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "memcached")
}
