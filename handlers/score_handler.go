package handlers

import (
	"net/http"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/services"

	"github.com/go-chi/chi/v5"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(ss services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: ss}
}

// SubmitScore ingests one packet from a judge device. The same uuid may
// arrive any number of times; later arrivals overwrite earlier ones.
func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var packet models.Packet
	if err := readJSON(w, r, &packet); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, created, err := h.scoreService.SubmitPacket(r.Context(), packet)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, score, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoreHandler) ListByGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		notFoundResponse(w, r)
		return
	}

	scores, err := h.scoreService.ListByGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, scores, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
