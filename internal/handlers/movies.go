package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/avoronin/kinogrid/internal/models"
	"github.com/avoronin/kinogrid/internal/services"
)

// MovieHandler serves the browse pipeline over the movie collection
type MovieHandler struct {
	library  *services.LibraryService
	validate *validator.Validate
	logger   *log.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(library *services.LibraryService, validate *validator.Validate, logger *log.Logger) *MovieHandler {
	return &MovieHandler{
		library:  library,
		validate: validate,
		logger:   logger,
	}
}

// List handles GET /api/movies
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 24
	}

	yearFrom, _ := strconv.Atoi(query.Get("yearFrom"))
	yearTo, _ := strconv.Atoi(query.Get("yearTo"))
	ratingFrom, _ := strconv.ParseFloat(query.Get("ratingFrom"), 64)
	ratingTo, _ := strconv.ParseFloat(query.Get("ratingTo"), 64)

	input := models.BrowseInput{
		Genre:      query.Get("genre"),
		Country:    query.Get("country"),
		Type:       query.Get("type"),
		YearFrom:   yearFrom,
		YearTo:     yearTo,
		RatingFrom: ratingFrom,
		RatingTo:   ratingTo,
		Sort:       query.Get("sort"),
		Page:       page,
		Limit:      limit,
	}

	if err := h.validate.Struct(input); err != nil {
		http.Error(w, `{"error":"Invalid browse parameters"}`, http.StatusBadRequest)
		return
	}

	// Call service
	result, err := h.library.Browse(r.Context(), input)
	if err != nil {
		h.logger.Printf("Failed to browse movies: %v", err)
		http.Error(w, `{"error":"Failed to fetch movies"}`, http.StatusInternalServerError)
		return
	}

	// Return JSON
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Get handles GET /api/movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	imdbID := r.PathValue("id")
	if imdbID == "" {
		http.Error(w, `{"error":"Invalid movie ID"}`, http.StatusBadRequest)
		return
	}

	movie, err := h.library.Get(r.Context(), imdbID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, `{"error":"Movie not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Printf("Failed to get movie %s: %v", imdbID, err)
		http.Error(w, `{"error":"Failed to fetch movie"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

// Refresh handles POST /api/movies/refresh
func (h *MovieHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	count, err := h.library.Refresh(r.Context())
	if err != nil {
		h.logger.Printf("Failed to refresh collection: %v", err)
		if errors.Is(err, services.ErrCatalogUnavailable) {
			http.Error(w, `{"error":"Catalog unavailable"}`, http.StatusBadGateway)
			return
		}
		http.Error(w, `{"error":"Failed to refresh collection"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":   count,
		"message": "Collection refreshed",
	})
}
