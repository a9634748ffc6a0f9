// Package service resolves a free-text query into one album record.
//
// Per query the encyclopedia search and the catalog search run at the same
// time. The encyclopedia result is required; the catalog result is joined
// only if it arrives within a bounded wait:
//
//	Idle → Fetching → Scoring → Merging (with or without enrichment) → Done
//
// Nothing is cached or retried, and no state survives between queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/provider"
	"github.com/DoggoSantini/vinyl-service/internal/ranking"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("query must not be empty")

// Options tunes the resolver. Zero values fall back to defaults.
type Options struct {
	EnrichmentWait      time.Duration
	PlaceholderImageURL string
	BatchConcurrency    int
}

const (
	defaultEnrichmentWait   = 3 * time.Second
	defaultBatchConcurrency = 4
)

// AlbumService is the resolver. It is safe for concurrent use: every call
// works on its own values.
type AlbumService struct {
	source   provider.CandidateSource
	enricher provider.Enricher // nil disables enrichment
	ranker   *ranking.Ranker
	opts     Options
	logger   *zap.Logger
}

// NewAlbumService wires the resolver. enricher may be nil.
func NewAlbumService(
	source provider.CandidateSource,
	enricher provider.Enricher,
	ranker *ranking.Ranker,
	opts Options,
	logger *zap.Logger,
) *AlbumService {
	if opts.EnrichmentWait <= 0 {
		opts.EnrichmentWait = defaultEnrichmentWait
	}
	if opts.PlaceholderImageURL == "" {
		opts.PlaceholderImageURL = DefaultPlaceholderImageURL
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	return &AlbumService{
		source:   source,
		enricher: enricher,
		ranker:   ranker,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve returns the display record for one query.
//
// Source failures never surface here: they degrade to "No album found." or
// to a record without the artist credit. The only errors are ErrEmptyQuery
// and the context's error when the caller abandoned the query, in which
// case the record must be discarded.
func (s *AlbumService) Resolve(ctx context.Context, query model.Query) (model.ResultRecord, error) {
	if query.Empty() {
		return model.ResultRecord{}, ErrEmptyQuery
	}

	// The catalog gets its own deadline so a slow catalog cannot hold up
	// the record, and is cancelled as soon as we stop caring about it.
	enrichCtx, cancelEnrich := context.WithTimeout(ctx, s.opts.EnrichmentWait)
	defer cancelEnrich()
	enrichCh := s.startEnrichment(enrichCtx, query)

	best, err := s.best(ctx, query)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.ResultRecord{}, ctxErr
	}
	if err != nil {
		return model.NotFound(query), nil
	}

	enrichment := s.awaitEnrichment(enrichCtx, query, enrichCh)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.ResultRecord{}, ctxErr
	}

	s.logger.Debug("merging result",
		zap.String("query", string(query)),
		zap.String("title", best.Page.Title),
		zap.Int("score", best.Score),
		zap.Bool("enriched", enrichment != nil),
	)
	return Merge(query, best, enrichment, s.opts.PlaceholderImageURL), nil
}

// ResolveBatch resolves several queries concurrently. Results keep the
// input order.
func (s *AlbumService) ResolveBatch(ctx context.Context, queries []model.Query) ([]model.ResultRecord, error) {
	for i, q := range queries {
		if q.Empty() {
			return nil, fmt.Errorf("query %d: %w", i, ErrEmptyQuery)
		}
	}

	results := make([]model.ResultRecord, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)

	for i, q := range queries {
		g.Go(func() error {
			rec, err := s.Resolve(gctx, q)
			if err != nil {
				return fmt.Errorf("resolving %q: %w", q, err)
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Candidates returns every fetched page with its score and the signals that
// fired, best first. Unlike Resolve it reports fetch failures.
func (s *AlbumService) Candidates(ctx context.Context, query model.Query) ([]model.ScoredCandidate, error) {
	if query.Empty() {
		return nil, ErrEmptyQuery
	}
	pages, err := s.source.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	return s.ranker.Rank(query, pages), nil
}

// best runs the Fetching and Scoring states.
func (s *AlbumService) best(ctx context.Context, query model.Query) (*model.ScoredCandidate, error) {
	pages, err := s.source.Search(ctx, query)
	if err != nil {
		s.logger.Warn("candidate fetch failed",
			zap.String("query", string(query)),
			zap.String("provider", s.source.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	best, err := s.ranker.Best(query, pages)
	if err != nil {
		s.logger.Info("no album matched",
			zap.String("query", string(query)),
			zap.Int("candidates", len(pages)),
		)
		return nil, err
	}
	return best, nil
}

// startEnrichment launches the catalog lookup. The channel is buffered so
// the goroutine can always deliver and exit, even if nobody reads.
func (s *AlbumService) startEnrichment(ctx context.Context, query model.Query) <-chan *model.EnrichmentResult {
	if s.enricher == nil {
		return nil
	}

	ch := make(chan *model.EnrichmentResult, 1)
	go func() {
		result, err := s.enricher.Enrich(ctx, query)
		if err != nil {
			s.logger.Debug("enrichment unavailable",
				zap.String("query", string(query)),
				zap.String("provider", s.enricher.Name()),
				zap.Error(err),
			)
			result = nil
		}
		ch <- result
	}()
	return ch
}

// awaitEnrichment joins the catalog lookup or gives up when its context
// ends (deadline or caller cancellation).
func (s *AlbumService) awaitEnrichment(ctx context.Context, query model.Query, ch <-chan *model.EnrichmentResult) *model.EnrichmentResult {
	if ch == nil {
		return nil
	}

	// A result that already arrived wins over an expired deadline.
	select {
	case result := <-ch:
		return result
	default:
	}

	select {
	case result := <-ch:
		return result
	case <-ctx.Done():
		s.logger.Warn("enrichment did not complete in time",
			zap.String("query", string(query)),
			zap.Duration("wait", s.opts.EnrichmentWait),
		)
		return nil
	}
}
