package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// LocationsHandler handles location endpoints.
type LocationsHandler struct {
	DB *sql.DB
}

type createLocationRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), h.DB, r.URL.Query().Get("type"))
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Type == "" {
		jsonError(w, http.StatusBadRequest, "name and type required")
		return
	}
	if !model.ValidLocationType(req.Type) {
		jsonError(w, http.StatusBadRequest, "type must be 'warehouse', 'store' or 'transit'")
		return
	}

	location, err := store.CreateLocation(r.Context(), h.DB, req.Name, req.Type)
	if err != nil {
		slog.Error("failed to create location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	slog.Info("location created", "user", GetClaims(r.Context()).Username, "location", location.Name)
	jsonResponse(w, http.StatusCreated, location)
}

// Get handles GET /api/locations/{id}.
func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	location, err := store.GetLocation(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get location")
		return
	}
	if location == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}
	jsonResponse(w, http.StatusOK, location)
}

// Delete handles DELETE /api/locations/{id}.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	location, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}
	if location == nil || location.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	err = store.DeleteLocation(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrLocationHoldsStock) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to delete location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}

	slog.Info("location deleted", "user", GetClaims(r.Context()).Username, "location", location.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}
