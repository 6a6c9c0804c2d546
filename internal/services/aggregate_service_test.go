package services

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/avoronin/kinogrid/internal/models"
)

// fakeCatalog serves canned search and detail responses and counts calls.
type fakeCatalog struct {
	mu          sync.Mutex
	search      map[string][]models.Summary
	searchErr   map[string]error
	details     map[string]*models.Movie
	detailErr   map[string]error
	detailCalls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		search:      make(map[string][]models.Summary),
		searchErr:   make(map[string]error),
		details:     make(map[string]*models.Movie),
		detailErr:   make(map[string]error),
		detailCalls: make(map[string]int),
	}
}

func (f *fakeCatalog) Search(_ context.Context, keyword string) ([]models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.searchErr[keyword]; err != nil {
		return nil, err
	}
	return f.search[keyword], nil
}

func (f *fakeCatalog) Detail(_ context.Context, imdbID string) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[imdbID]++
	if err := f.detailErr[imdbID]; err != nil {
		return nil, err
	}
	return f.details[imdbID], nil
}

func summary(id, title string) models.Summary {
	return models.Summary{ImdbID: id, Title: title, Year: "2000", Type: "movie", Poster: "N/A"}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestAggregator(catalog Catalog, cfg AggregateConfig) *AggregateService {
	if cfg.SearchBatchSize == 0 {
		cfg.SearchBatchSize = 10
	}
	if cfg.DetailBatchSize == 0 {
		cfg.DetailBatchSize = 20
	}
	return NewAggregateService(catalog, cfg, testLogger())
}

func TestAggregate_DedupesAndEnriches(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["war"] = []models.Summary{summary("ttA", "Alpha"), summary("ttB", "Bravo")}
	catalog.search["love"] = []models.Summary{summary("ttB", "Bravo"), summary("ttC", "Charlie")}
	for _, id := range []string{"ttA", "ttB", "ttC"} {
		catalog.details[id] = &models.Movie{ImdbID: id, Genre: "Drama", ImdbRating: "7.0"}
	}

	agg := newTestAggregator(catalog, AggregateConfig{KeepPartial: true})
	movies, err := agg.Aggregate(context.Background(), []string{"war", "love"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(movies) != 3 {
		t.Fatalf("expected 3 deduplicated movies, got %d", len(movies))
	}
	wantOrder := []string{"ttA", "ttB", "ttC"}
	for i, id := range wantOrder {
		if movies[i].ImdbID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, movies[i].ImdbID)
		}
	}
	for _, id := range wantOrder {
		if catalog.detailCalls[id] != 1 {
			t.Errorf("expected exactly one detail fetch for %s, got %d", id, catalog.detailCalls[id])
		}
	}
}

func TestAggregate_DetailOverridesSummary(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["war"] = []models.Summary{{ImdbID: "ttA", Title: "Old Title", Year: "2000", Type: "movie", Poster: "http://img/summary.jpg"}}
	catalog.details["ttA"] = &models.Movie{
		ImdbID:     "ttA",
		Title:      "New Title",
		Genre:      "Action",
		ImdbRating: "8.1",
		Poster:     "N/A", // sentinel must not clobber the summary poster
	}

	agg := newTestAggregator(catalog, AggregateConfig{KeepPartial: true})
	movies, err := agg.Aggregate(context.Background(), []string{"war"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}

	m := movies[0]
	if m.Title != "New Title" {
		t.Errorf("detail title must win, got %q", m.Title)
	}
	if m.Genre != "Action" || m.ImdbRating != "8.1" {
		t.Errorf("detail fields missing: %+v", m)
	}
	if m.Poster != "http://img/summary.jpg" {
		t.Errorf("N/A detail poster must not override summary, got %q", m.Poster)
	}
}

func TestAggregate_KeywordFailureIsAbsorbed(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["good"] = []models.Summary{summary("ttA", "Alpha")}
	catalog.searchErr["bad"] = errors.New("connection refused")
	catalog.details["ttA"] = &models.Movie{ImdbID: "ttA"}

	agg := newTestAggregator(catalog, AggregateConfig{KeepPartial: true})
	movies, err := agg.Aggregate(context.Background(), []string{"bad", "good"})
	if err != nil {
		t.Fatalf("partial failure must be absorbed, got: %v", err)
	}
	if len(movies) != 1 || movies[0].ImdbID != "ttA" {
		t.Fatalf("expected the surviving keyword's movie, got %+v", movies)
	}
}

func TestAggregate_TotalFailureSurfaces(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchErr["a"] = errors.New("connection refused")
	catalog.searchErr["b"] = errors.New("connection refused")

	agg := newTestAggregator(catalog, AggregateConfig{})
	_, err := agg.Aggregate(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestAggregate_EmptySearchesAreNotFailures(t *testing.T) {
	catalog := newFakeCatalog()
	// Both keywords succeed with zero hits: that is an empty collection,
	// not an unreachable catalog.
	agg := newTestAggregator(catalog, AggregateConfig{})
	movies, err := agg.Aggregate(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected empty collection, got %d", len(movies))
	}
}

func TestAggregate_DetailFailure(t *testing.T) {
	setup := func() *fakeCatalog {
		catalog := newFakeCatalog()
		catalog.search["war"] = []models.Summary{summary("ttA", "Alpha"), summary("ttB", "Bravo")}
		catalog.details["ttA"] = &models.Movie{ImdbID: "ttA", Genre: "Action"}
		catalog.detailErr["ttB"] = errors.New("timeout")
		return catalog
	}

	t.Run("keep partial", func(t *testing.T) {
		agg := newTestAggregator(setup(), AggregateConfig{KeepPartial: true})
		movies, err := agg.Aggregate(context.Background(), []string{"war"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 2 {
			t.Fatalf("expected summary-only survivor, got %d movies", len(movies))
		}
		if movies[1].ImdbID != "ttB" || movies[1].Genre != "" {
			t.Errorf("expected bare summary for ttB, got %+v", movies[1])
		}
	})

	t.Run("drop", func(t *testing.T) {
		agg := newTestAggregator(setup(), AggregateConfig{KeepPartial: false})
		movies, err := agg.Aggregate(context.Background(), []string{"war"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 1 || movies[0].ImdbID != "ttA" {
			t.Fatalf("expected ttB dropped, got %+v", movies)
		}
	})
}

func TestAggregate_MaxDetailsCap(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["war"] = []models.Summary{
		summary("tt1", "One"), summary("tt2", "Two"), summary("tt3", "Three"),
	}
	for _, id := range []string{"tt1", "tt2", "tt3"} {
		catalog.details[id] = &models.Movie{ImdbID: id}
	}

	agg := newTestAggregator(catalog, AggregateConfig{MaxDetails: 2, KeepPartial: true})
	movies, err := agg.Aggregate(context.Background(), []string{"war"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected capped collection of 2, got %d", len(movies))
	}
	if catalog.detailCalls["tt3"] != 0 {
		t.Errorf("capped item must not be fetched, got %d calls", catalog.detailCalls["tt3"])
	}
}

func TestAggregate_SmallBatchesCoverAllKeywords(t *testing.T) {
	catalog := newFakeCatalog()
	keywords := []string{"a", "b", "c", "d", "e"}
	for i, kw := range keywords {
		id := string(rune('1' + i))
		catalog.search[kw] = []models.Summary{summary("tt"+id, kw)}
		catalog.details["tt"+id] = &models.Movie{ImdbID: "tt" + id}
	}

	agg := newTestAggregator(catalog, AggregateConfig{SearchBatchSize: 2, DetailBatchSize: 2, KeepPartial: true})
	movies, err := agg.Aggregate(context.Background(), keywords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != len(keywords) {
		t.Fatalf("expected %d movies across batches, got %d", len(keywords), len(movies))
	}
}
