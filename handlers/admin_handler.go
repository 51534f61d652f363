package handlers

import (
	"net/http"

	"github.com/coyotecrew/camporee-collator/services"
)

type AdminHandler struct {
	adminService  services.AdminService
	exportService services.ExportService
}

func NewAdminHandler(as services.AdminService, es services.ExportService) *AdminHandler {
	return &AdminHandler{adminService: as, exportService: es}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Passphrase string `json:"passphrase"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, err := h.adminService.Login(input.Passphrase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) FullReset(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.FullReset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": "full"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.ResetScores(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": "scores"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) Roster(w http.ResponseWriter, r *http.Request) {
	report, err := h.adminService.Roster(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.exportService.Export(r.Context(), input.Title)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
