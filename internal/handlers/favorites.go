package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/avoronin/kinogrid/internal/models"
	"github.com/avoronin/kinogrid/internal/services"
)

// FavoritesHandler serves the persisted favorites set
type FavoritesHandler struct {
	favorites *services.FavoritesService
	logger    *log.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(favorites *services.FavoritesService, logger *log.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		logger:    logger,
	}
}

// List handles GET /api/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.List(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list favorites: %v", err)
		http.Error(w, `{"error":"Failed to fetch favorites"}`, http.StatusInternalServerError)
		return
	}
	if favorites == nil {
		favorites = []models.Movie{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": favorites,
		"count":   len(favorites),
	})
}

// Toggle handles POST /api/favorites/toggle. The body is the movie record to
// save; toggling an id that is already saved removes it.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var movie models.Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if movie.ImdbID == "" {
		http.Error(w, `{"error":"imdbID is required"}`, http.StatusBadRequest)
		return
	}

	added, err := h.favorites.Toggle(r.Context(), movie)
	if err != nil {
		h.logger.Printf("Failed to toggle favorite %s: %v", movie.ImdbID, err)
		http.Error(w, `{"error":"Failed to toggle favorite"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"imdbID": movie.ImdbID,
		"added":  added,
	})
}
