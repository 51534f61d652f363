package handlers

import (
	"net/http"

	"github.com/coyotecrew/camporee-collator/services"
)

type EntityHandler struct {
	entityService services.EntityService
}

func NewEntityHandler(es services.EntityService) *EntityHandler {
	return &EntityHandler{entityService: es}
}

// ListEntities returns the raw roster array. Devices merge it into their
// local entity cache, so the response is the bare list without an envelope.
func (h *EntityHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.entityService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, entities, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateEntity registers a walk-up patrol or troop. Devices expect the
// created entity back as the bare object so they can append it locally.
func (h *EntityHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEntityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entity, err := h.entityService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, entity, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
