package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/auth"
	"github.com/swelljoe/weatherpulse/internal/db"
	"github.com/swelljoe/weatherpulse/internal/metrics"
	"github.com/swelljoe/weatherpulse/internal/weather"
)

// Database defines the interface for database operations needed by handlers
type Database interface {
	PingContext(ctx context.Context) error
	ListLocations(ctx context.Context, userID int64) ([]db.SavedLocation, error)
	CreateLocation(ctx context.Context, l *db.SavedLocation) error
	DeleteLocation(ctx context.Context, userID, id int64) error
	ListSubscriptions(ctx context.Context, userID int64) ([]db.Subscription, error)
	CreateSubscription(ctx context.Context, s *db.Subscription) error
	DeleteSubscription(ctx context.Context, userID, id int64) error
	Preferences(ctx context.Context, userID int64) (*db.Preferences, error)
	SavePreferences(ctx context.Context, p *db.Preferences) error
}

// WeatherService is the cached weather lookups
type WeatherService interface {
	ByCity(ctx context.Context, city string) (*weather.WeatherPayload, error)
	ByCoords(ctx context.Context, lat, lon float64, tz string) (*weather.WeatherPayload, error)
	AirQuality(ctx context.Context, lat, lon float64, tz string) (*weather.AQIPayload, error)
	Alerts(ctx context.Context, lat, lon float64, tz string) (*weather.AlertsPayload, error)
}

// Authenticator registers users and checks bearer tokens
type Authenticator interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*db.User, error)
	Login(ctx context.Context, identifier, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Authenticate(ctx context.Context, access string) (*db.User, error)
}

// Options configures the HTTP surface
type Options struct {
	AllowedOrigins []string
	Logger         hclog.Logger
	Metrics        *metrics.Metrics
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db      Database
	weather WeatherService
	auth    Authenticator
	origins map[string]bool
	log     hclog.Logger
	metrics *metrics.Metrics
}

// New creates a new Handlers instance
func New(database Database, wService WeatherService, authenticator Authenticator, opts Options) *Handlers {
	h := &Handlers{
		db:      database,
		weather: wService,
		auth:    authenticator,
		origins: make(map[string]bool, len(opts.AllowedOrigins)),
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	for _, o := range opts.AllowedOrigins {
		h.origins[o] = true
	}
	if h.log == nil {
		h.log = hclog.NewNullLogger()
	}
	return h
}

// Router wires every route behind the CORS and logging middleware
func (h *Handlers) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(h.logRequests)

	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	if h.metrics != nil {
		router.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/weather", h.HandleWeather).Methods(http.MethodGet)
	api.HandleFunc("/aqi", h.HandleAQI).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.HandleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", h.HandleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/token", h.HandleToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/token/refresh", h.HandleTokenRefresh).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(h.requireAuth)
	private.HandleFunc("/me", h.HandleMe).Methods(http.MethodGet)
	private.HandleFunc("/saved-locations", h.HandleListLocations).Methods(http.MethodGet)
	private.HandleFunc("/saved-locations", h.HandleCreateLocation).Methods(http.MethodPost)
	private.HandleFunc("/saved-locations/{id:[0-9]+}", h.HandleDeleteLocation).Methods(http.MethodDelete)
	private.HandleFunc("/alert-subscriptions", h.HandleListSubscriptions).Methods(http.MethodGet)
	private.HandleFunc("/alert-subscriptions", h.HandleCreateSubscription).Methods(http.MethodPost)
	private.HandleFunc("/alert-subscriptions/{id:[0-9]+}", h.HandleDeleteSubscription).Methods(http.MethodDelete)
	private.HandleFunc("/preferences", h.HandleGetPreferences).Methods(http.MethodGet)
	private.HandleFunc("/preferences", h.HandleUpdatePreferences).Methods(http.MethodPut)

	return h.cors(h.recoverPanics(router))
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.log.Warn("Health check ping failed", "error", err)
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Response write error", "error", err)
	}
}

func (h *Handlers) writeDetail(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

// writeFieldError reports a validation failure keyed by field name
func (h *Handlers) writeFieldError(w http.ResponseWriter, field, message string) {
	h.writeJSON(w, http.StatusBadRequest, map[string][]string{field: {message}})
}

func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handlers) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("Upstream request failed", "path", r.URL.Path, "error", err)
	h.writeDetail(w, http.StatusBadGateway, "Weather provider unavailable")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// coords reads lat, lon and timezone query parameters. present is false when
// either coordinate is missing.
func coords(r *http.Request) (lat, lon float64, tz string, present bool, err error) {
	q := r.URL.Query()
	latStr := strings.TrimSpace(q.Get("lat"))
	lonStr := strings.TrimSpace(q.Get("lon"))
	tz = q.Get("timezone")
	if tz == "" {
		tz = "auto"
	}
	if latStr == "" || lonStr == "" {
		return 0, 0, tz, false, nil
	}
	if lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return 0, 0, tz, true, err
	}
	if lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return 0, 0, tz, true, err
	}
	if !finite(lat) || !finite(lon) {
		return 0, 0, tz, true, errors.New("coordinates must be finite")
	}
	return lat, lon, tz, true, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
