// Package app wires configuration into a ready AlbumService. Both the HTTP
// server and the CLI build their resolver here.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/config"
	"github.com/DoggoSantini/vinyl-service/internal/provider"
	"github.com/DoggoSantini/vinyl-service/internal/ranking"
	"github.com/DoggoSantini/vinyl-service/internal/service"
)

// NewAlbumService builds the providers and the resolver from cfg.
// ctx scopes the catalog token refreshes; pass a context that lives as long
// as the service.
func NewAlbumService(ctx context.Context, cfg *config.Config, logger *zap.Logger) *service.AlbumService {
	wiki := provider.NewWikipediaProvider(provider.WikipediaOptions{
		BaseURL:           cfg.Wikipedia.BaseURL,
		UserAgent:         cfg.Wikipedia.UserAgent,
		Timeout:           cfg.Wikipedia.Timeout,
		RequestsPerSecond: cfg.Wikipedia.RequestsPerSecond,
	}, logger)

	creds := provider.SpotifyCredentials{
		Token:        cfg.Spotify.Token,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
	}
	tokens := creds.TokenSource(ctx)
	if tokens == nil {
		logger.Info("no Spotify credential configured, artist credits disabled")
	}

	spotify := provider.NewSpotifyProvider(provider.SpotifyOptions{
		BaseURL:           cfg.Spotify.BaseURL,
		Timeout:           cfg.Spotify.Timeout,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
	}, tokens, logger)

	return service.NewAlbumService(wiki, spotify, ranking.New(), service.Options{
		EnrichmentWait:      cfg.Resolve.EnrichmentWait,
		PlaceholderImageURL: cfg.Resolve.PlaceholderImageURL,
		BatchConcurrency:    cfg.Resolve.BatchConcurrency,
	}, logger)
}
