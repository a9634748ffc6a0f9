package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/DoggoSantini/vinyl-service/internal/model"
)

// SpotifyOptions configures the catalog client.
type SpotifyOptions struct {
	BaseURL           string // e.g. "https://api.spotify.com"
	Timeout           time.Duration
	RequestsPerSecond float64
}

// SpotifyProvider looks an album up in the Spotify catalog and returns the
// artist credit and cover of the first hit. It never acquires credentials
// itself: the token source is handed in, and a nil source means the
// catalog is unavailable.
type SpotifyProvider struct {
	endpoint string
	tokens   oauth2.TokenSource
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewSpotifyProvider creates the catalog client. tokens may be nil.
func NewSpotifyProvider(opts SpotifyOptions, tokens oauth2.TokenSource, logger *zap.Logger) *SpotifyProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SpotifyProvider{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/v1/search",
		tokens:   tokens,
		client:   &http.Client{Timeout: timeout},
		limiter:  newLimiter(opts.RequestsPerSecond),
		logger:   logger.With(zap.String("provider", "spotify")),
	}
}

func (s *SpotifyProvider) Name() string { return "spotify" }

type spotifySearchResponse struct {
	Albums *struct {
		Items []spotifyAlbum `json:"items"`
	} `json:"albums"`
}

type spotifyAlbum struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
	Popularity int `json:"popularity"`
}

// Enrich searches for albums matching the query and returns the first one.
// Zero items is (nil, nil). Every failure, including a missing or rejected
// credential and rate limiting, is an *EnrichmentError.
func (s *SpotifyProvider) Enrich(ctx context.Context, query model.Query) (*model.EnrichmentResult, error) {
	if s.tokens == nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: ErrNoCredential}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	token, err := s.tokens.Token()
	if err != nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: fmt.Errorf("obtaining token: %w", err)}
	}
	if !token.Valid() {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: ErrNoCredential}
	}

	params := url.Values{
		"q":     {string(query)},
		"type":  {"album"},
		"limit": {strconv.Itoa(catalogSearchLimit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: fmt.Errorf("creating request: %w", err)}
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var parsed spotifySearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 5<<20)).Decode(&parsed); err != nil {
		return nil, &EnrichmentError{Provider: s.Name(), Cause: fmt.Errorf("decoding response: %w", err)}
	}

	if parsed.Albums == nil || len(parsed.Albums.Items) == 0 {
		s.logger.Debug("no catalog albums", zap.String("query", string(query)))
		return nil, nil
	}

	return toEnrichment(parsed.Albums.Items[0]), nil
}

func toEnrichment(a spotifyAlbum) *model.EnrichmentResult {
	result := &model.EnrichmentResult{
		AlbumName:  a.Name,
		Popularity: a.Popularity,
	}
	for _, artist := range a.Artists {
		if artist.Name != "" {
			result.ArtistNames = append(result.ArtistNames, artist.Name)
		}
	}
	// Spotify lists images largest first.
	if len(a.Images) > 0 && a.Images[0].URL != "" {
		img := a.Images[0]
		result.PreviewImage = &model.Image{URL: img.URL, Width: img.Width, Height: img.Height}
	}
	return result
}
