package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/swelljoe/weatherpulse/internal/forecast"
	"github.com/swelljoe/weatherpulse/internal/metrics"
)

const (
	geocodeURL    = "https://geocoding-api.open-meteo.com/v1/search"
	reverseURL    = "https://geocoding-api.open-meteo.com/v1/reverse"
	forecastURL   = "https://api.open-meteo.com/v1/forecast"
	airQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	nominatimURL  = "https://nominatim.openstreetmap.org/search"

	fallbackName = "Current location"
)

var (
	currentFields = []string{
		"temperature_2m", "relative_humidity_2m", "apparent_temperature", "precipitation",
		"weather_code", "wind_speed_10m", "wind_direction_10m", "uv_index",
	}
	hourlyFields = []string{
		"temperature_2m", "apparent_temperature", "precipitation_probability", "precipitation",
		"weather_code", "wind_speed_10m", "uv_index",
	}
	dailyFields = []string{
		"weather_code", "temperature_2m_max", "temperature_2m_min", "precipitation_probability_max",
		"uv_index_max", "sunrise", "sunset",
	}
	airQualityFields = []string{
		"us_aqi", "pm2_5", "pm10", "carbon_monoxide", "nitrogen_dioxide", "sulphur_dioxide", "ozone",
	}
)

// Client handles Open-Meteo and Nominatim API interactions
type Client struct {
	UserAgent  string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Metrics    *metrics.Metrics
}

// NewClient creates a new upstream client limited to rps requests per second
func NewClient(userAgent string, rps float64, burst int) *Client {
	return &Client{
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *Client) get(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}
	}

	start := time.Now()
	data, err := c.do(ctx, endpoint, requestURL)
	c.Metrics.ObserveUpstream(endpoint, err, time.Since(start))
	return data, err
}

func (c *Client) do(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API error: %d %s", endpoint, resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, endpoint, requestURL string, v any) error {
	data, err := c.get(ctx, endpoint, requestURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s response: %w", endpoint, err)
	}
	return nil
}

// GeocodeCity resolves a city name with Open-Meteo. It returns nil when
// nothing matches.
func (c *Client) GeocodeCity(ctx context.Context, name string) (*Location, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "5")
	params.Set("language", "en")
	params.Set("format", "json")

	var resp GeocodeResponse
	if err := c.getJSON(ctx, "geocode", geocodeURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	top := resp.Results[0]
	return &Location{
		Name:     top.Name,
		Country:  top.Country,
		Admin1:   top.Admin1,
		Lat:      top.Latitude,
		Lon:      top.Longitude,
		Timezone: orDefault(top.Timezone, "auto"),
	}, nil
}

// GeocodeAddress resolves free text (street addresses, landmarks) with
// Nominatim. It returns nil when nothing matches.
func (c *Client) GeocodeAddress(ctx context.Context, query string) (*Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	var resp SearchResponse
	if err := c.getJSON(ctx, "nominatim", nominatimURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, nil
	}

	top := resp[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim latitude %q: %w", top.Lat, err)
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim longitude %q: %w", top.Lon, err)
	}

	return &Location{
		Name:     addressName(top.Address, top.DisplayName),
		Country:  top.Address["country"],
		Admin1:   top.Address["state"],
		Lat:      lat,
		Lon:      lon,
		Timezone: "auto",
	}, nil
}

// addressName prefers the most specific named feature in a Nominatim address
func addressName(address map[string]string, displayName string) string {
	for _, key := range []string{"attraction", "amenity", "road", "suburb", "city", "town", "village"} {
		if v := address[key]; v != "" {
			return v
		}
	}
	if first := strings.TrimSpace(strings.Split(displayName, ",")[0]); first != "" {
		return first
	}
	return fallbackName
}

// ReverseGeocode finds the place nearest to a coordinate. It returns nil when
// nothing matches.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("language", "en")
	params.Set("format", "json")

	var resp ReverseResponse
	if err := c.getJSON(ctx, "reverse", reverseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	top := resp.Results[0]
	loc := &Location{
		Name:     firstNonEmpty(top.Name, top.City, top.Town, top.Village, top.Admin2, top.Admin1, fallbackName),
		Country:  top.Country,
		Admin1:   top.Admin1,
		Lat:      lat,
		Lon:      lon,
		Timezone: orDefault(top.Timezone, "auto"),
	}
	if top.Latitude != nil {
		loc.Lat = *top.Latitude
	}
	if top.Longitude != nil {
		loc.Lon = *top.Longitude
	}
	return loc, nil
}

// Forecast fetches current, hourly and daily conditions
func (c *Client) Forecast(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("timezone", orDefault(tz, "auto"))
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("hourly", strings.Join(hourlyFields, ","))
	params.Set("daily", strings.Join(dailyFields, ","))

	return c.document(ctx, "forecast", forecastURL+"?"+params.Encode())
}

// AirQuality fetches current air quality readings
func (c *Client) AirQuality(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("timezone", orDefault(tz, "auto"))
	params.Set("current", strings.Join(airQualityFields, ","))

	return c.document(ctx, "air_quality", airQualityURL+"?"+params.Encode())
}

func (c *Client) document(ctx context.Context, endpoint, requestURL string) (forecast.Document, error) {
	data, err := c.get(ctx, endpoint, requestURL)
	if err != nil {
		return nil, err
	}
	doc, err := forecast.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s response: %w", endpoint, err)
	}
	return doc, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
