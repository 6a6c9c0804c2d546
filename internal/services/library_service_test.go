package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/avoronin/kinogrid/internal/models"
)

func newTestLibrary(t *testing.T, catalog *fakeCatalog, snapshotPath string, keywords ...string) (*LibraryService, *FavoritesService) {
	t.Helper()
	favorites := NewFavoritesService(&memorySlot{})
	agg := newTestAggregator(catalog, AggregateConfig{KeepPartial: true})
	lib := NewLibraryService(catalog, agg, favorites, keywords, snapshotPath, testLogger())
	return lib, favorites
}

func TestLibrary_PrefersSnapshotOverLive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := WriteSnapshot(path, []models.Movie{{ImdbID: "tt0001", Title: "From Snapshot"}}); err != nil {
		t.Fatal(err)
	}

	// The catalog fails hard; a usable snapshot means it is never needed.
	catalog := newFakeCatalog()
	catalog.searchErr["war"] = errors.New("connection refused")

	lib, _ := newTestLibrary(t, catalog, path, "war")
	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.Count() != 1 {
		t.Fatalf("expected 1 movie from snapshot, got %d", lib.Count())
	}
}

func TestLibrary_FallsBackToLiveAggregation(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["war"] = []models.Summary{summary("tt0001", "Alpha")}
	catalog.details["tt0001"] = &models.Movie{ImdbID: "tt0001", Title: "Alpha", Genre: "Drama"}

	lib, _ := newTestLibrary(t, catalog, filepath.Join(t.TempDir(), "missing.json"), "war")
	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.Count() != 1 {
		t.Fatalf("expected 1 movie from live aggregation, got %d", lib.Count())
	}
}

func TestLibrary_TotalFailureLeavesEmptyCollection(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchErr["war"] = errors.New("connection refused")

	lib, _ := newTestLibrary(t, catalog, filepath.Join(t.TempDir(), "missing.json"), "war")
	err := lib.Load(context.Background())
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if lib.Count() != 0 {
		t.Fatalf("expected empty collection, got %d", lib.Count())
	}

	// An empty collection browses to an empty page, not an error.
	result, err := lib.Browse(context.Background(), models.BrowseInput{Page: 1, Limit: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 0 || result.Count != 0 {
		t.Fatalf("expected empty browse result, got %+v", result)
	}
}

func TestLibrary_BrowseFiltersSortsAndPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := WriteSnapshot(path, []models.Movie{
		{ImdbID: "tt1", Title: "Alpha", Year: "2001", Genre: "Drama", Type: "movie", ImdbRating: "6.0"},
		{ImdbID: "tt2", Title: "Bravo", Year: "2002", Genre: "Drama", Type: "movie", ImdbRating: "8.0"},
		{ImdbID: "tt3", Title: "Charlie", Year: "2003", Genre: "Drama", Type: "movie", ImdbRating: "7.0"},
		{ImdbID: "tt4", Title: "Delta", Year: "2004", Genre: "Comedy", Type: "movie", ImdbRating: "9.0"},
	}); err != nil {
		t.Fatal(err)
	}

	lib, _ := newTestLibrary(t, newFakeCatalog(), path)
	if err := lib.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	result, err := lib.Browse(context.Background(), models.BrowseInput{
		Genre: "Drama",
		Sort:  "rating_desc",
		Page:  1,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 3 || result.TotalPages != 2 {
		t.Fatalf("expected count=3 totalPages=2, got count=%d totalPages=%d", result.Count, result.TotalPages)
	}
	if len(result.Results) != 2 || result.Results[0].ImdbID != "tt2" || result.Results[1].ImdbID != "tt3" {
		t.Fatalf("unexpected page: %+v", result.Results)
	}

	// Second page holds the remainder; a page past the end is empty.
	page2, _ := lib.Browse(context.Background(), models.BrowseInput{Genre: "Drama", Sort: "rating_desc", Page: 2, Limit: 2})
	if len(page2.Results) != 1 || page2.Results[0].ImdbID != "tt1" {
		t.Fatalf("unexpected second page: %+v", page2.Results)
	}
	page3, _ := lib.Browse(context.Background(), models.BrowseInput{Genre: "Drama", Sort: "rating_desc", Page: 3, Limit: 2})
	if len(page3.Results) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", page3.Results)
	}
}

func TestLibrary_BrowseFlagsFavorites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := WriteSnapshot(path, []models.Movie{
		{ImdbID: "tt1", Title: "Alpha", Year: "2001"},
		{ImdbID: "tt2", Title: "Bravo", Year: "2002"},
	}); err != nil {
		t.Fatal(err)
	}

	lib, favorites := newTestLibrary(t, newFakeCatalog(), path)
	if err := lib.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := favorites.Toggle(context.Background(), models.Movie{ImdbID: "tt2", Title: "Bravo"}); err != nil {
		t.Fatal(err)
	}

	result, err := lib.Browse(context.Background(), models.BrowseInput{Page: 1, Limit: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, card := range result.Results {
		want := card.ImdbID == "tt2"
		if card.Favorite != want {
			t.Errorf("%s: favorite=%v, want %v", card.ImdbID, card.Favorite, want)
		}
	}
}

func TestLibrary_GetFallsBackToCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := WriteSnapshot(path, []models.Movie{{ImdbID: "tt1", Title: "Alpha"}}); err != nil {
		t.Fatal(err)
	}

	catalog := newFakeCatalog()
	catalog.details["tt9"] = &models.Movie{ImdbID: "tt9", Title: "Live Fetch"}

	lib, _ := newTestLibrary(t, catalog, path)
	if err := lib.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	// In the collection: no catalog call needed.
	movie, err := lib.Get(context.Background(), "tt1")
	if err != nil || movie.Title != "Alpha" {
		t.Fatalf("expected collection hit, got %+v, %v", movie, err)
	}
	if catalog.detailCalls["tt1"] != 0 {
		t.Errorf("collection hit must not call the catalog")
	}

	// Unknown id: fetched live.
	movie, err = lib.Get(context.Background(), "tt9")
	if err != nil || movie.Title != "Live Fetch" {
		t.Fatalf("expected live fetch, got %+v, %v", movie, err)
	}

	// Nowhere: ErrNotFound.
	if _, err := lib.Get(context.Background(), "tt404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLibrary_RefreshReplacesCollection(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.search["war"] = []models.Summary{summary("tt1", "Alpha")}
	catalog.details["tt1"] = &models.Movie{ImdbID: "tt1", Title: "Alpha"}

	lib, _ := newTestLibrary(t, catalog, filepath.Join(t.TempDir(), "missing.json"), "war")
	if err := lib.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	catalog.mu.Lock()
	catalog.search["war"] = []models.Summary{summary("tt2", "Bravo"), summary("tt3", "Charlie")}
	catalog.details["tt2"] = &models.Movie{ImdbID: "tt2"}
	catalog.details["tt3"] = &models.Movie{ImdbID: "tt3"}
	catalog.mu.Unlock()

	count, err := lib.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 || lib.Count() != 2 {
		t.Fatalf("expected replaced collection of 2, got count=%d size=%d", count, lib.Count())
	}
}
