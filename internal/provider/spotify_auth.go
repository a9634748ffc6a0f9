package provider

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyCredentials holds whatever catalog credential the operator provided.
// A pre-issued Token wins over client credentials.
type SpotifyCredentials struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// TokenSource returns a cached token source for the configured credential,
// or nil when none is configured. The resolver treats nil as "catalog
// unavailable" and skips enrichment.
func (c SpotifyCredentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: c.Token,
			TokenType:   "Bearer",
		})
	}

	if c.ClientID == "" || c.ClientSecret == "" || c.TokenURL == "" {
		return nil
	}

	cc := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
	}
	// The client-credentials source caches the token until it expires.
	return cc.TokenSource(ctx)
}
