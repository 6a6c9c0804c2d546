package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/avoronin/kinogrid/internal/models"
	"github.com/avoronin/kinogrid/internal/services"
)

// CatalogHandler passes live catalog searches through to OMDb
type CatalogHandler struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog services.Catalog, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// Search handles GET /api/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error":"Missing search query"}`, http.StatusBadRequest)
		return
	}

	results, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.logger.Printf("Live search %q failed: %v", query, err)
		http.Error(w, `{"error":"Search failed"}`, http.StatusBadGateway)
		return
	}
	if results == nil {
		results = []models.Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
