// Package ranking picks the encyclopedia page that describes an album.
//
// Scoring is a flat table of (predicate, weight) rows evaluated against a
// lower-cased copy of each page. A page's score depends only on the page and
// the query, so the same inputs always produce the same integer.
package ranking

import (
	"errors"
	"sort"
	"strings"

	"github.com/DoggoSantini/vinyl-service/internal/model"
)

// ErrNoMatch is returned when no candidate looks like an album: the list is
// empty, the winner has no extract, or the best score is not positive.
var ErrNoMatch = errors.New("no album candidate")

// Ranker scores candidate pages with a fixed signal table.
// The zero value is not usable; call New or NewWithSignals.
type Ranker struct {
	signals []Signal
}

// New returns a Ranker using DefaultSignals.
func New() *Ranker {
	return NewWithSignals(DefaultSignals)
}

// NewWithSignals returns a Ranker with a custom table (used in tests).
func NewWithSignals(signals []Signal) *Ranker {
	return &Ranker{signals: signals}
}

// Score computes the relevance of one page for the query.
func (r *Ranker) Score(query model.Query, page model.CandidatePage) model.ScoredCandidate {
	c := normalize(query, page)

	scored := model.ScoredCandidate{Page: page}
	for _, s := range r.signals {
		if s.Match(c) {
			scored.Score += s.Weight
			scored.Signals = append(scored.Signals, s.Name)
		}
	}
	return scored
}

// Rank scores every page and returns them best first. Pages with equal
// scores keep their fetch order.
func (r *Ranker) Rank(query model.Query, pages []model.CandidatePage) []model.ScoredCandidate {
	scored := make([]model.ScoredCandidate, len(pages))
	for i, p := range pages {
		scored[i] = r.Score(query, p)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Best returns the winning page, or ErrNoMatch.
func (r *Ranker) Best(query model.Query, pages []model.CandidatePage) (*model.ScoredCandidate, error) {
	if len(pages) == 0 {
		return nil, ErrNoMatch
	}

	winner := r.Rank(query, pages)[0]
	if winner.Page.Extract == "" || winner.Score <= 0 {
		return nil, ErrNoMatch
	}
	return &winner, nil
}

// FirstSentence returns the extract up to and including the first period,
// or the whole extract when it has none.
func FirstSentence(extract string) string {
	if i := strings.IndexByte(extract, '.'); i >= 0 {
		return extract[:i+1]
	}
	return extract
}

func normalize(query model.Query, page model.CandidatePage) *candidate {
	return &candidate{
		query:        query.Normalized(),
		title:        strings.ToLower(page.Title),
		extract:      strings.ToLower(page.Extract),
		categories:   model.NormalizeCategories(page.Categories),
		hasThumbnail: page.Thumbnail != nil,
	}
}
