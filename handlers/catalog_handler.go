package handlers

import (
	"net/http"

	"github.com/coyotecrew/camporee-collator/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// GetGames serves the station catalog in the shape devices fetch on refresh.
func (h *CatalogHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	catalog := h.catalogService.Catalog()

	response := jsonResponse{
		"games":          catalog.Stations,
		"common_scoring": catalog.CommonScoring,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReloadGames re-reads the game definition files from disk.
func (h *CatalogHandler) ReloadGames(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.Reload(); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	catalog := h.catalogService.Catalog()
	response := jsonResponse{
		"reloaded": true,
		"games":    len(catalog.Stations),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
