package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const prefix = "wp:"

// WeatherKey fingerprints a free-text location: the first 16 hex characters
// of the SHA-256 of the trimmed, lower-cased identifier.
func WeatherKey(identifier string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(identifier))))
	return prefix + "weather:" + hex.EncodeToString(sum[:])[:16]
}

// WeatherCoordsKey keys a forecast by position and timezone
func WeatherCoordsKey(lat, lon float64, tz string) string {
	return coordsKey("weather", lat, lon, tz)
}

// AQIKey keys an air quality lookup
func AQIKey(lat, lon float64, tz string) string {
	return coordsKey("aqi", lat, lon, tz)
}

// AlertsKey keys a derived alert list
func AlertsKey(lat, lon float64, tz string) string {
	return coordsKey("alerts", lat, lon, tz)
}

func coordsKey(domain string, lat, lon float64, tz string) string {
	return fmt.Sprintf("%s%s:%.4f:%.4f:%s", prefix, domain, lat, lon, tz)
}
