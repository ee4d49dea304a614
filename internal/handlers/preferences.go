package handlers

import (
	"fmt"
	"net/http"
)

var preferenceChoices = map[string][]string{
	"unit":        {"C", "F"},
	"theme":       {"light", "dark"},
	"time_format": {"12", "24"},
}

type preferencesRequest struct {
	Unit       *string `json:"unit"`
	Theme      *string `json:"theme"`
	TimeFormat *string `json:"time_format"`
}

func validChoice(field, v string) bool {
	for _, c := range preferenceChoices[field] {
		if c == v {
			return true
		}
	}
	return false
}

// HandleGetPreferences returns the caller's preferences, creating defaults
func (h *Handlers) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.db.Preferences(r.Context(), currentUser(r).ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdatePreferences applies the fields present in the body
func (h *Handlers) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	prefs, err := h.db.Preferences(r.Context(), currentUser(r).ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	for _, f := range []struct {
		name  string
		value *string
		dst   *string
	}{
		{"unit", req.Unit, &prefs.Unit},
		{"theme", req.Theme, &prefs.Theme},
		{"time_format", req.TimeFormat, &prefs.TimeFormat},
	} {
		if f.value == nil {
			continue
		}
		if !validChoice(f.name, *f.value) {
			h.writeFieldError(w, f.name, fmt.Sprintf("%q is not a valid choice.", *f.value))
			return
		}
		*f.dst = *f.value
	}

	if err := h.db.SavePreferences(r.Context(), prefs); err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}
