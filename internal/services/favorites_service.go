package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/avoronin/kinogrid/internal/models"
)

// Slot is the persistence capability behind the favorites store: one named
// key-value slot that survives restarts. Get reports ok=false when the slot
// has never been written.
type Slot interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte) error
}

// FavoritesService keeps the user-curated set of saved movies, one entry per
// imdbID, persisted through an injected Slot. Toggle is a read-modify-write
// of the whole list under the mutex so racing toggles converge.
type FavoritesService struct {
	mu   sync.Mutex
	slot Slot
}

// NewFavoritesService creates a new FavoritesService
func NewFavoritesService(slot Slot) *FavoritesService {
	return &FavoritesService{slot: slot}
}

// List returns the persisted favorites in insertion order. A slot that was
// never written is an empty list.
func (s *FavoritesService) List(ctx context.Context) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Toggle adds the movie when absent and removes it when present. The boolean
// reports whether the entry was just added.
func (s *FavoritesService) Toggle(ctx context.Context, movie models.Movie) (bool, error) {
	if movie.ImdbID == "" {
		return false, fmt.Errorf("movie has no imdbID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	added := true
	next := favorites[:0:0]
	for _, f := range favorites {
		if f.ImdbID == movie.ImdbID {
			added = false
			continue
		}
		next = append(next, f)
	}
	if added {
		next = append(next, movie)
	}

	if err := s.save(ctx, next); err != nil {
		return false, err
	}
	return added, nil
}

// Contains reports whether the id is currently a favorite.
func (s *FavoritesService) Contains(ctx context.Context, imdbID string) (bool, error) {
	favorites, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favorites {
		if f.ImdbID == imdbID {
			return true, nil
		}
	}
	return false, nil
}

// IDSet returns the favorite ids as a set, for flagging browse results.
func (s *FavoritesService) IDSet(ctx context.Context) (map[string]bool, error) {
	favorites, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		set[f.ImdbID] = true
	}
	return set, nil
}

func (s *FavoritesService) load(ctx context.Context) ([]models.Movie, error) {
	data, ok, err := s.slot.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var favorites []models.Movie
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return favorites, nil
}

func (s *FavoritesService) save(ctx context.Context, favorites []models.Movie) error {
	if favorites == nil {
		favorites = []models.Movie{}
	}
	data, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.slot.Set(ctx, data); err != nil {
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}

// FileSlot persists the favorites slot as a JSON file, replaced atomically
// via a temp file and rename.
type FileSlot struct {
	Path string
}

// NewFileSlot creates a file-backed slot
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{Path: path}
}

func (s *FileSlot) Get(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileSlot) Set(_ context.Context, data []byte) error {
	return writeFileAtomic(s.Path, data)
}
