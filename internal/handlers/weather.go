package handlers

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/weather"
)

// HandleWeather returns the forecast for ?city= or ?lat=&lon=. Coordinates
// win when both are given.
func (h *Handlers) HandleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, tz, present, err := coords(r)
	if err != nil {
		h.writeDetail(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}

	var payload *weather.WeatherPayload
	if present {
		payload, err = h.weather.ByCoords(r.Context(), lat, lon, tz)
	} else {
		city := strings.TrimSpace(r.URL.Query().Get("city"))
		if city == "" {
			h.writeDetail(w, http.StatusBadRequest, "city query param is required")
			return
		}
		payload, err = h.weather.ByCity(r.Context(), city)
	}

	if errors.Is(err, weather.ErrNotFound) {
		h.writeDetail(w, http.StatusNotFound, "City not found")
		return
	}
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// HandleAQI returns air quality for ?lat=&lon=
func (h *Handlers) HandleAQI(w http.ResponseWriter, r *http.Request) {
	lat, lon, tz, ok := h.requireCoords(w, r)
	if !ok {
		return
	}
	payload, err := h.weather.AirQuality(r.Context(), lat, lon, tz)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// HandleAlerts returns the unfiltered alert list for ?lat=&lon=
func (h *Handlers) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	lat, lon, tz, ok := h.requireCoords(w, r)
	if !ok {
		return
	}
	payload, err := h.weather.Alerts(r.Context(), lat, lon, tz)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) requireCoords(w http.ResponseWriter, r *http.Request) (float64, float64, string, bool) {
	lat, lon, tz, present, err := coords(r)
	if !present {
		h.writeDetail(w, http.StatusBadRequest, "lat and lon are required")
		return 0, 0, "", false
	}
	if err != nil {
		h.writeDetail(w, http.StatusBadRequest, "lat and lon must be numbers")
		return 0, 0, "", false
	}
	return lat, lon, tz, true
}
