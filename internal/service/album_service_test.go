package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/provider"
	"github.com/DoggoSantini/vinyl-service/internal/ranking"
)

// fakeSource stands in for the encyclopedia. If gate is set, Search waits
// for it (or the context) before answering.
type fakeSource struct {
	pages []model.CandidatePage
	err   error
	gate  func(ctx context.Context) error
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return "fake-wiki" }

func (f *fakeSource) Search(ctx context.Context, query model.Query) ([]model.CandidatePage, error) {
	f.calls.Add(1)
	if f.gate != nil {
		if err := f.gate(ctx); err != nil {
			return nil, err
		}
	}
	return f.pages, f.err
}

// fakeEnricher stands in for the catalog. started is closed on the first
// call; block, when set, holds the call until closed and ignores the context.
type fakeEnricher struct {
	result  *model.EnrichmentResult
	err     error
	block   chan struct{}
	started chan struct{}
	once    atomic.Bool
}

func (f *fakeEnricher) Name() string { return "fake-catalog" }

func (f *fakeEnricher) Enrich(ctx context.Context, query model.Query) (*model.EnrichmentResult, error) {
	if f.started != nil && f.once.CompareAndSwap(false, true) {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func abbeyRoadPage() model.CandidatePage {
	return model.CandidatePage{
		Title:      "Abbey Road",
		Extract:    "Abbey Road is the eleventh studio album by English rock band the Beatles, released on 26 September 1969. It was the last album the group recorded.",
		Categories: []string{"1969_albums"},
		Thumbnail:  &model.Image{URL: "https://upload.example/thumb/abbey.jpg", Width: 500, Height: 500},
		Original:   &model.Image{URL: "https://upload.example/abbey.jpg", Width: 3000, Height: 3000},
	}
}

func beatlesEnrichment() *model.EnrichmentResult {
	return &model.EnrichmentResult{
		AlbumName:    "Abbey Road (Remastered)",
		ArtistNames:  []string{"The Beatles"},
		PreviewImage: &model.Image{URL: "https://i.scdn.example/640.jpg", Width: 640, Height: 640},
	}
}

const abbeyRoadSentence = "Abbey Road is the eleventh studio album by English rock band the Beatles, released on 26 September 1969."

func newTestService(source provider.CandidateSource, enricher provider.Enricher, wait time.Duration) *AlbumService {
	return NewAlbumService(source, enricher, ranking.New(), Options{EnrichmentWait: wait}, zap.NewNop())
}

func assertNotFound(t *testing.T, rec model.ResultRecord) {
	t.Helper()
	if rec.DisplayText != model.NoAlbumFound {
		t.Errorf("expected %q, got %q", model.NoAlbumFound, rec.DisplayText)
	}
	if rec.ImageURL != nil {
		t.Errorf("expected nil image, got %q", *rec.ImageURL)
	}
}

func TestResolve_AbbeyRoadWithEnrichment(t *testing.T) {
	svc := newTestService(
		&fakeSource{pages: []model.CandidatePage{abbeyRoadPage()}},
		&fakeEnricher{result: beatlesEnrichment()},
		time.Second,
	)

	rec, err := svc.Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "By The Beatles. " + abbeyRoadSentence
	if rec.DisplayText != want {
		t.Errorf("display text = %q, want %q", rec.DisplayText, want)
	}
	if rec.ImageURL == nil || *rec.ImageURL != "https://upload.example/abbey.jpg" {
		t.Errorf("expected original page image, got %v", rec.ImageURL)
	}
	if rec.Thumbnail == nil || rec.Thumbnail.URL != "https://i.scdn.example/640.jpg" {
		t.Errorf("expected catalog cover as thumbnail, got %+v", rec.Thumbnail)
	}
	if rec.Query != "Abbey Road" {
		t.Errorf("expected query to be echoed verbatim, got %q", rec.Query)
	}
}

func TestResolve_ZeroPages(t *testing.T) {
	svc := newTestService(&fakeSource{pages: []model.CandidatePage{}}, &fakeEnricher{result: beatlesEnrichment()}, time.Second)

	rec, err := svc.Resolve(context.Background(), "xyzzy")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	assertNotFound(t, rec)
}

func TestResolve_AllCandidatesNonPositive(t *testing.T) {
	source := &fakeSource{pages: []model.CandidatePage{{
		Title:      "Coldplay",
		Extract:    "Coldplay is a British rock band formed in London in 1997.",
		Categories: []string{"musical_groups_from_london", "musicians_from_london"},
	}}}
	svc := newTestService(source, nil, time.Second)

	rec, err := svc.Resolve(context.Background(), "Coldplay")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	assertNotFound(t, rec)
}

func TestResolve_FetchErrorDegradesToNotFound(t *testing.T) {
	source := &fakeSource{err: &provider.FetchError{Provider: "fake-wiki", Cause: errors.New("connection refused")}}
	svc := newTestService(source, &fakeEnricher{result: beatlesEnrichment()}, time.Second)

	rec, err := svc.Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("expected fetch failure to be swallowed, got %v", err)
	}
	assertNotFound(t, rec)
}

func TestResolve_EnrichmentFailureOnlyDropsArtistPrefix(t *testing.T) {
	pages := []model.CandidatePage{abbeyRoadPage()}

	plain, err := newTestService(&fakeSource{pages: pages}, nil, time.Second).Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Resolve without enricher: %v", err)
	}

	failing := &fakeEnricher{err: &provider.EnrichmentError{Provider: "fake-catalog", Cause: errors.New("HTTP 401")}}
	degraded, err := newTestService(&fakeSource{pages: pages}, failing, time.Second).Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("expected enrichment failure to be swallowed, got %v", err)
	}

	if degraded.DisplayText != abbeyRoadSentence {
		t.Errorf("display text = %q, want %q", degraded.DisplayText, abbeyRoadSentence)
	}
	if degraded.DisplayText != plain.DisplayText || *degraded.ImageURL != *plain.ImageURL {
		t.Errorf("enrichment failure changed the result: %+v vs %+v", degraded, plain)
	}
}

func TestResolve_EnrichmentTimeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	svc := newTestService(
		&fakeSource{pages: []model.CandidatePage{abbeyRoadPage()}},
		&fakeEnricher{result: beatlesEnrichment(), block: block},
		50*time.Millisecond,
	)

	done := make(chan model.ResultRecord, 1)
	go func() {
		rec, err := svc.Resolve(context.Background(), "Abbey Road")
		if err != nil {
			t.Errorf("Resolve: %v", err)
		}
		done <- rec
	}()

	select {
	case rec := <-done:
		if rec.DisplayText != abbeyRoadSentence {
			t.Errorf("expected encyclopedia-only text, got %q", rec.DisplayText)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Resolve hung waiting for the catalog")
	}
}

func TestResolve_FetchesRunConcurrently(t *testing.T) {
	enricher := &fakeEnricher{result: beatlesEnrichment(), started: make(chan struct{})}
	source := &fakeSource{
		pages: []model.CandidatePage{abbeyRoadPage()},
		// The encyclopedia only answers once the catalog call is in flight.
		gate: func(ctx context.Context) error {
			select {
			case <-enricher.started:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("catalog was not queried concurrently")
			}
		},
	}
	svc := newTestService(source, enricher, 5*time.Second)

	rec, err := svc.Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasPrefix(rec.DisplayText, "By The Beatles. ") {
		t.Errorf("expected enriched text, got %q", rec.DisplayText)
	}
}

func TestResolve_NoMatchIgnoresEnrichment(t *testing.T) {
	source := &fakeSource{pages: []model.CandidatePage{{Title: "Disambiguation", Extract: "May refer to.", Categories: []string{"disambiguation_pages"}}}}
	svc := newTestService(source, &fakeEnricher{result: beatlesEnrichment()}, time.Second)

	rec, err := svc.Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	assertNotFound(t, rec)
}

func TestResolve_NilEnricher(t *testing.T) {
	svc := newTestService(&fakeSource{pages: []model.CandidatePage{abbeyRoadPage()}}, nil, time.Second)

	rec, err := svc.Resolve(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.DisplayText != abbeyRoadSentence {
		t.Errorf("unexpected text %q", rec.DisplayText)
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	source := &fakeSource{}
	svc := newTestService(source, nil, time.Second)

	_, err := svc.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if source.calls.Load() != 0 {
		t.Error("expected no search for an empty query")
	}
}

func TestResolve_AbandonedQuery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &fakeSource{
		pages: []model.CandidatePage{abbeyRoadPage()},
		gate: func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		},
	}
	svc := newTestService(source, &fakeEnricher{result: beatlesEnrichment()}, time.Second)

	rec, err := svc.Resolve(ctx, "Abbey Road")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.DisplayText != "" {
		t.Errorf("expected no record for an abandoned query, got %+v", rec)
	}
}

func TestResolveBatch_KeepsInputOrder(t *testing.T) {
	svc := newTestService(&fakeSource{pages: []model.CandidatePage{abbeyRoadPage()}}, nil, time.Second)

	queries := []model.Query{"Abbey Road", "Let It Be", "Abbey Road"}
	results, err := svc.ResolveBatch(context.Background(), queries)
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}
	for i, rec := range results {
		if rec.Query != string(queries[i]) {
			t.Errorf("result %d: query = %q, want %q", i, rec.Query, queries[i])
		}
	}
	// "Let It Be" gets no title bonus but the page still scores as an album.
	if results[1].DisplayText != abbeyRoadSentence {
		t.Errorf("unexpected text for second query: %q", results[1].DisplayText)
	}
}

func TestResolveBatch_RejectsEmptyQuery(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil, time.Second)

	_, err := svc.ResolveBatch(context.Background(), []model.Query{"Abbey Road", ""})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestCandidates(t *testing.T) {
	source := &fakeSource{pages: []model.CandidatePage{
		{Title: "The Beatles", Extract: "The Beatles were a band.", Categories: []string{"musical_groups_from_liverpool"}},
		abbeyRoadPage(),
	}}
	svc := newTestService(source, nil, time.Second)

	ranked, err := svc.Candidates(context.Background(), "Abbey Road")
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ranked))
	}
	if ranked[0].Page.Title != "Abbey Road" || len(ranked[0].Signals) == 0 {
		t.Errorf("unexpected winner %+v", ranked[0])
	}
}

func TestCandidates_ReportsFetchError(t *testing.T) {
	source := &fakeSource{err: &provider.FetchError{Provider: "fake-wiki", Cause: errors.New("boom")}}
	svc := newTestService(source, nil, time.Second)

	_, err := svc.Candidates(context.Background(), "Abbey Road")
	var fetchErr *provider.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("expected *provider.FetchError, got %v", err)
	}
}
