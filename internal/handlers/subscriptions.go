package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/alerts"
	"github.com/swelljoe/weatherpulse/internal/db"
)

type subscriptionRequest struct {
	placeRequest
	MinSeverity string    `json:"min_severity"`
	Types       *[]string `json:"types"`
}

// alertTypes validates requested types and returns a message on failure. A
// missing list means all of them.
func alertTypes(requested *[]string) ([]string, string) {
	if requested == nil {
		out := make([]string, 0, len(alerts.AllTypes))
		for _, t := range alerts.AllTypes {
			out = append(out, string(t))
		}
		return out, ""
	}
	if len(*requested) == 0 {
		return nil, "Select at least one type"
	}

	var invalid []string
	for _, t := range *requested {
		if !alerts.Type(t).Valid() {
			invalid = append(invalid, t)
		}
	}
	if len(invalid) > 0 {
		return nil, "Invalid types: " + strings.Join(invalid, ", ")
	}
	return *requested, ""
}

// HandleListSubscriptions lists the caller's alert subscriptions
func (h *Handlers) HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.db.ListSubscriptions(r.Context(), currentUser(r).ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

// HandleCreateSubscription subscribes the caller to alerts for a place
func (h *Handlers) HandleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if field, msg := req.validate(); field != "" {
		h.writeFieldError(w, field, msg)
		return
	}
	if req.MinSeverity == "" {
		req.MinSeverity = string(alerts.Info)
	}
	if !alerts.Severity(req.MinSeverity).Valid() {
		h.writeFieldError(w, "min_severity", fmt.Sprintf("%q is not a valid choice.", req.MinSeverity))
		return
	}
	types, msg := alertTypes(req.Types)
	if msg != "" {
		h.writeFieldError(w, "types", msg)
		return
	}

	sub := &db.Subscription{
		UserID:      currentUser(r).ID,
		Name:        req.Name,
		Country:     req.Country,
		Admin1:      req.Admin1,
		Lat:         *req.Lat,
		Lon:         *req.Lon,
		Timezone:    req.Timezone,
		MinSeverity: req.MinSeverity,
		Types:       types,
	}
	err := h.db.CreateSubscription(r.Context(), sub)
	if errors.Is(err, db.ErrConflict) {
		h.writeDetail(w, http.StatusConflict, "Already subscribed to this location")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sub)
}

// HandleDeleteSubscription removes a subscription. Unknown ids are not an error.
func (h *Handlers) HandleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	err = h.db.DeleteSubscription(r.Context(), currentUser(r).ID, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
