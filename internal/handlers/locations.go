package handlers

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/db"
)

// placeRequest is the shared body of saved location and subscription creates
type placeRequest struct {
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	Admin1   string   `json:"admin1"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Timezone string   `json:"timezone"`
}

// validate returns the offending field and message, or "" when valid
func (p *placeRequest) validate() (string, string) {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return "name", "This field is required."
	case p.Lat == nil:
		return "lat", "This field is required."
	case p.Lon == nil:
		return "lon", "This field is required."
	case *p.Lat < -90 || *p.Lat > 90:
		return "lat", "Ensure this value is between -90 and 90."
	case *p.Lon < -180 || *p.Lon > 180:
		return "lon", "Ensure this value is between -180 and 180."
	}
	return "", ""
}

// HandleListLocations lists the caller's saved locations
func (h *Handlers) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.db.ListLocations(r.Context(), currentUser(r).ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, locations)
}

// HandleCreateLocation saves a location for the caller
func (h *Handlers) HandleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if field, msg := req.validate(); field != "" {
		h.writeFieldError(w, field, msg)
		return
	}

	loc := &db.SavedLocation{
		UserID:   currentUser(r).ID,
		Name:     req.Name,
		Country:  req.Country,
		Admin1:   req.Admin1,
		Lat:      *req.Lat,
		Lon:      *req.Lon,
		Timezone: req.Timezone,
	}
	err := h.db.CreateLocation(r.Context(), loc)
	if errors.Is(err, db.ErrConflict) {
		h.writeDetail(w, http.StatusConflict, "Location already saved")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

// HandleDeleteLocation removes a saved location. Unknown ids are not an error.
func (h *Handlers) HandleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	err = h.db.DeleteLocation(r.Context(), currentUser(r).ID, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
