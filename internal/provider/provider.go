// Package provider talks to the two external sources behind the resolver:
// the encyclopedia search (candidate pages) and the music catalog
// (artist credit and cover art).
package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/DoggoSantini/vinyl-service/internal/model"
)

// MaxCandidates caps how many pages one encyclopedia search returns.
const MaxCandidates = 10

// catalogSearchLimit is how many albums the catalog is asked for.
// Only the first one is used.
const catalogSearchLimit = 20

// ErrNoCredential means the catalog has no bearer token to send.
var ErrNoCredential = errors.New("no catalog credential configured")

// CandidateSource returns raw candidate pages for a query, in source order.
type CandidateSource interface {
	Search(ctx context.Context, query model.Query) ([]model.CandidatePage, error)
	Name() string
}

// Enricher returns optional catalog metadata for a query.
// A nil result with a nil error means the catalog had nothing.
type Enricher interface {
	Enrich(ctx context.Context, query model.Query) (*model.EnrichmentResult, error)
	Name() string
}

// FetchError is a network or parse failure on the encyclopedia call.
// Callers treat it as "no candidates".
type FetchError struct {
	Provider string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Provider, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// EnrichmentError is any failure on the catalog path. It is always
// swallowed by the resolver.
type EnrichmentError struct {
	Provider string
	Cause    error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("%s: enrichment failed: %v", e.Provider, e.Cause)
}

func (e *EnrichmentError) Unwrap() error { return e.Cause }

// newLimiter builds an outbound limiter. A non-positive rate disables pacing.
func newLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}
