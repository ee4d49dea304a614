package weather

import (
	"github.com/swelljoe/weatherpulse/internal/alerts"
	"github.com/swelljoe/weatherpulse/internal/forecast"
)

// Location is a resolved place
type Location struct {
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Admin1   string  `json:"admin1"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// WeatherPayload is the cached forecast envelope
type WeatherPayload struct {
	Location Location          `json:"location"`
	Forecast forecast.Document `json:"forecast"`
	Cached   bool              `json:"cached"`
}

// AQIPayload is the cached air quality envelope
type AQIPayload struct {
	AQI    forecast.Document `json:"aqi"`
	Cached bool              `json:"cached"`
}

// AlertsPayload is the cached alert list envelope
type AlertsPayload struct {
	Alerts []alerts.Alert `json:"alerts"`
	Cached bool           `json:"cached"`
}

// GeocodeResponse represents the Open-Meteo geocoding response
type GeocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// ReverseResponse represents the Open-Meteo reverse geocoding response
type ReverseResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		City      string   `json:"city"`
		Town      string   `json:"town"`
		Village   string   `json:"village"`
		Admin2    string   `json:"admin2"`
		Admin1    string   `json:"admin1"`
		Country   string   `json:"country"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Timezone  string   `json:"timezone"`
	} `json:"results"`
}

// SearchResponse represents a Nominatim search response
type SearchResponse []struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}
