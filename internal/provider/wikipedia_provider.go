package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoggoSantini/vinyl-service/internal/model"
)

// WikipediaOptions configures the encyclopedia client.
type WikipediaOptions struct {
	BaseURL           string // e.g. "https://en.wikipedia.org"
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// WikipediaProvider runs a generator=search query against the MediaWiki API
// and returns each hit with its lead extract, categories and page images.
type WikipediaProvider struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewWikipediaProvider creates the encyclopedia client.
func NewWikipediaProvider(opts WikipediaOptions, logger *zap.Logger) *WikipediaProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WikipediaProvider{
		endpoint:  strings.TrimRight(opts.BaseURL, "/") + "/w/api.php",
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   newLimiter(opts.RequestsPerSecond),
		logger:    logger.With(zap.String("provider", "wikipedia")),
	}
}

func (w *WikipediaProvider) Name() string { return "wikipedia" }

// wikiResponse mirrors the parts of the action=query response we read.
// Pages is keyed by page ID; Index is the position in the search results.
type wikiResponse struct {
	Query *struct {
		Pages map[string]wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	PageID     int            `json:"pageid"`
	Title      string         `json:"title"`
	Index      int            `json:"index"`
	Extract    string         `json:"extract"`
	Categories []wikiCategory `json:"categories"`
	Thumbnail  *wikiImage     `json:"thumbnail"`
	Original   *wikiImage     `json:"original"`
}

type wikiCategory struct {
	Title string `json:"title"`
}

type wikiImage struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Search returns up to MaxCandidates pages in search order. A response with
// no pages is an empty result, not an error.
func (w *WikipediaProvider) Search(ctx context.Context, query model.Query) ([]model.CandidatePage, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Provider: w.Name(), Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.searchURL(query), nil)
	if err != nil {
		return nil, &FetchError{Provider: w.Name(), Cause: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: w.Name(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Provider: w.Name(),
			Cause:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var parsed wikiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 5<<20)).Decode(&parsed); err != nil {
		return nil, &FetchError{Provider: w.Name(), Cause: fmt.Errorf("decoding response: %w", err)}
	}

	if parsed.Query == nil || len(parsed.Query.Pages) == 0 {
		w.logger.Debug("search returned no pages", zap.String("query", string(query)))
		return []model.CandidatePage{}, nil
	}

	pages := orderPages(parsed.Query.Pages)
	if len(pages) > MaxCandidates {
		pages = pages[:MaxCandidates]
	}

	candidates := make([]model.CandidatePage, 0, len(pages))
	for _, p := range pages {
		candidates = append(candidates, toCandidate(p))
	}

	w.logger.Debug("search complete",
		zap.String("query", string(query)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func (w *WikipediaProvider) searchURL(query model.Query) string {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"generator":   {"search"},
		"gsrsearch":   {string(query)},
		"gsrlimit":    {strconv.Itoa(MaxCandidates)},
		"prop":        {"extracts|pageimages|categories"},
		"cllimit":     {"max"},
		"piprop":      {"thumbnail|original"},
		"pithumbsize": {"500"},
		"pilimit":     {"max"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
	}
	return w.endpoint + "?" + params.Encode()
}

// orderPages flattens the keyed page map back into search order. Pages
// without an index (older API responses) fall back to page ID order so the
// result is still deterministic.
func orderPages(byID map[string]wikiPage) []wikiPage {
	pages := make([]wikiPage, 0, len(byID))
	for _, p := range byID {
		pages = append(pages, p)
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Index != pages[j].Index {
			return pages[i].Index < pages[j].Index
		}
		return pages[i].PageID < pages[j].PageID
	})
	return pages
}

// toCandidate converts an API page. Category titles come back as
// "Category:1969 albums"; spaces become underscores so they match the
// canonical tag form the ranking signals look for.
func toCandidate(p wikiPage) model.CandidatePage {
	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, strings.ReplaceAll(c.Title, " ", "_"))
	}
	return model.CandidatePage{
		Title:      p.Title,
		Extract:    p.Extract,
		Categories: model.NormalizeCategories(cats),
		Thumbnail:  toImage(p.Thumbnail),
		Original:   toImage(p.Original),
	}
}

func toImage(img *wikiImage) *model.Image {
	if img == nil || img.Source == "" {
		return nil
	}
	return &model.Image{URL: img.Source, Width: img.Width, Height: img.Height}
}
