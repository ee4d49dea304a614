package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/swelljoe/weatherpulse/internal/alerts"
	"github.com/swelljoe/weatherpulse/internal/cache"
	"github.com/swelljoe/weatherpulse/internal/forecast"
	"github.com/swelljoe/weatherpulse/internal/metrics"
)

// ErrNotFound is returned when a city cannot be resolved
var ErrNotFound = errors.New("city not found")

// Upstream is the set of remote lookups the service relies on
type Upstream interface {
	GeocodeCity(ctx context.Context, name string) (*Location, error)
	GeocodeAddress(ctx context.Context, query string) (*Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error)
	Forecast(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error)
	AirQuality(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error)
}

// Service handles weather lookups and caching
type Service struct {
	upstream Upstream
	cache    cache.Store
	log      hclog.Logger
	metrics  *metrics.Metrics
}

// NewService creates a new weather service
func NewService(upstream Upstream, store cache.Store, log hclog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{
		upstream: upstream,
		cache:    store,
		log:      log,
		metrics:  m,
	}
}

// ByCity returns the forecast for a named place, trying the city geocoder
// before the address geocoder
func (s *Service) ByCity(ctx context.Context, city string) (*WeatherPayload, error) {
	key := cache.WeatherKey(city)
	var cached WeatherPayload
	if s.lookup(ctx, "weather", key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	loc, err := s.upstream.GeocodeCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode city: %w", err)
	}
	if loc == nil {
		loc, err = s.upstream.GeocodeAddress(ctx, city)
		if err != nil {
			// the address geocoder is best effort
			s.log.Warn("Address geocoding failed", "query", city, "error", err)
			loc = nil
		}
	}
	if loc == nil {
		return nil, ErrNotFound
	}

	doc, err := s.upstream.Forecast(ctx, loc.Lat, loc.Lon, loc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	payload := &WeatherPayload{Location: *loc, Forecast: doc}
	s.store(ctx, key, payload, cache.WeatherTTL)
	return payload, nil
}

// ByCoords returns the forecast for a coordinate. The place name comes from a
// best-effort reverse lookup.
func (s *Service) ByCoords(ctx context.Context, lat, lon float64, tz string) (*WeatherPayload, error) {
	tz = orDefault(tz, "auto")
	key := cache.WeatherCoordsKey(lat, lon, tz)
	var cached WeatherPayload
	if s.lookup(ctx, "weather", key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	loc, err := s.upstream.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.log.Warn("Reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		loc = nil
	}
	if loc == nil {
		loc = &Location{Name: fallbackName, Lat: lat, Lon: lon, Timezone: tz}
	}

	doc, err := s.upstream.Forecast(ctx, lat, lon, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	payload := &WeatherPayload{Location: *loc, Forecast: doc}
	s.store(ctx, key, payload, cache.WeatherTTL)
	return payload, nil
}

// AirQuality returns current air quality for a coordinate
func (s *Service) AirQuality(ctx context.Context, lat, lon float64, tz string) (*AQIPayload, error) {
	tz = orDefault(tz, "auto")
	key := cache.AQIKey(lat, lon, tz)
	var cached AQIPayload
	if s.lookup(ctx, "aqi", key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	doc, err := s.upstream.AirQuality(ctx, lat, lon, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}

	payload := &AQIPayload{AQI: doc}
	s.store(ctx, key, payload, cache.AQITTL)
	return payload, nil
}

// Alerts derives the alert list for a coordinate from a fresh forecast
func (s *Service) Alerts(ctx context.Context, lat, lon float64, tz string) (*AlertsPayload, error) {
	tz = orDefault(tz, "auto")
	key := cache.AlertsKey(lat, lon, tz)
	var cached AlertsPayload
	if s.lookup(ctx, "alerts", key, &cached) {
		cached.Cached = true
		if cached.Alerts == nil {
			cached.Alerts = []alerts.Alert{}
		}
		return &cached, nil
	}

	doc, err := s.upstream.Forecast(ctx, lat, lon, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	payload := &AlertsPayload{Alerts: alerts.Build(doc)}
	s.store(ctx, key, payload, cache.AlertsTTL)
	return payload, nil
}

// lookup reads key into v. Cache failures are logged and count as a miss.
func (s *Service) lookup(ctx context.Context, domain, key string, v any) bool {
	hit, err := cache.GetJSON(ctx, s.cache, key, v)
	if err != nil {
		s.log.Warn("Cache read failed", "key", key, "error", err)
		hit = false
	}
	s.metrics.CacheResult(domain, hit)
	return hit
}

func (s *Service) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, s.cache, key, v, ttl); err != nil {
		s.log.Warn("Cache write failed", "key", key, "error", err)
	}
}
