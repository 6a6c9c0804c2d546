package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/avoronin/kinogrid/internal/models"
)

// ErrNotFound is returned when an imdbID is neither in the collection nor
// known to the catalog.
var ErrNotFound = errors.New("movie not found")

// LibraryService owns the in-memory movie collection. The collection is
// identifier-unique and loaded once (snapshot preferred, live aggregation as
// fallback); browsing is always a pure recomputation of filter, sort and page
// over the full set.
type LibraryService struct {
	mu     sync.RWMutex
	movies []models.Movie

	catalog      Catalog
	aggregator   *AggregateService
	favorites    *FavoritesService
	keywords     []string
	snapshotPath string
	logger       *log.Logger
}

// NewLibraryService creates a new LibraryService
func NewLibraryService(catalog Catalog, aggregator *AggregateService, favorites *FavoritesService, keywords []string, snapshotPath string, logger *log.Logger) *LibraryService {
	return &LibraryService{
		catalog:      catalog,
		aggregator:   aggregator,
		favorites:    favorites,
		keywords:     keywords,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// Load fills the collection: a non-empty snapshot wins, otherwise the
// keywords are aggregated live. A fully unreachable catalog leaves the
// collection empty and returns the error; the caller decides whether that
// is fatal (the server starts anyway and serves an empty grid).
func (s *LibraryService) Load(ctx context.Context) error {
	snapshot, ok, err := LoadSnapshot(s.snapshotPath)
	if err != nil {
		s.logger.Printf("Ignoring unreadable snapshot %s: %v", s.snapshotPath, err)
	}
	if ok {
		s.replace(snapshot.Movies)
		s.logger.Printf("Loaded %d movies from snapshot (generated %s)", len(snapshot.Movies), snapshot.LastUpdated.Format("2006-01-02"))
		return nil
	}

	_, err = s.Refresh(ctx)
	return err
}

// Refresh re-runs the live aggregation and atomically replaces the
// collection. Returns the new collection size.
func (s *LibraryService) Refresh(ctx context.Context) (int, error) {
	movies, err := s.aggregator.Aggregate(ctx, s.keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate collection: %w", err)
	}
	s.replace(movies)
	s.logger.Printf("Collection refreshed: %d movies", len(movies))
	return len(movies), nil
}

func (s *LibraryService) replace(movies []models.Movie) {
	// Snapshots are generated by the same pipeline and should already be
	// unique, but the invariant is cheap to restore.
	seen := make(map[string]bool, len(movies))
	unique := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if m.ImdbID == "" || seen[m.ImdbID] {
			continue
		}
		seen[m.ImdbID] = true
		unique = append(unique, m)
	}

	s.mu.Lock()
	s.movies = unique
	s.mu.Unlock()
}

// Count returns the collection size.
func (s *LibraryService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

// all returns a shared read-only view of the collection. ApplyFilter never
// mutates its input, so handing out the slice is safe.
func (s *LibraryService) all() []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movies
}

// Browse recomputes filter+sort over the full collection and returns the
// requested page with favorite-membership flags.
func (s *LibraryService) Browse(ctx context.Context, input models.BrowseInput) (*models.PaginatedMovies, error) {
	filtered := ApplyFilter(s.all(), input.Criteria(), ParseSortKey(input.Sort))
	page := Page(filtered, input.Limit, input.Page)

	favoriteIDs, err := s.favorites.IDSet(ctx)
	if err != nil {
		// Favorites are decoration on the browse result; a broken slot
		// should not take the grid down.
		s.logger.Printf("Failed to load favorite ids: %v", err)
		favoriteIDs = nil
	}

	cards := make([]models.MovieCard, 0, len(page))
	for _, m := range page {
		cards = append(cards, models.MovieCard{Movie: m, Favorite: favoriteIDs[m.ImdbID]})
	}

	return &models.PaginatedMovies{
		Results:    cards,
		Page:       input.Page,
		Count:      len(filtered),
		TotalPages: PageCount(len(filtered), input.Limit),
	}, nil
}

// Get returns one record, falling back to a live catalog fetch for ids that
// are not in the collection.
func (s *LibraryService) Get(ctx context.Context, imdbID string) (*models.Movie, error) {
	for _, m := range s.all() {
		if m.ImdbID == imdbID {
			return &m, nil
		}
	}

	detail, err := s.catalog.Detail(ctx, imdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", imdbID, err)
	}
	if detail == nil {
		return nil, ErrNotFound
	}
	return detail, nil
}
