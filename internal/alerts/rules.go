package alerts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/swelljoe/weatherpulse/internal/forecast"
)

const (
	hourlyLookahead     = 12
	hourlyRainThreshold = 70
)

type comparison int

const (
	atLeast comparison = iota
	atMost
)

func (c comparison) holds(v, threshold float64) bool {
	if c == atMost {
		return v <= threshold
	}
	return v >= threshold
}

// tier is one severity level of a rule. detail holds a single %s verb for the
// formatted signal value.
type tier struct {
	threshold float64
	title     string
	detail    string
}

type rule struct {
	alertType Type
	signal    func(forecast.Document) (float64, bool)
	cmp       comparison
	format    func(float64) string
	warning   tier
	info      tier
}

// rules are evaluated in order; each contributes at most one alert
var rules = []rule{
	{
		alertType: Rain,
		signal:    dailyFirst("precipitation_probability_max"),
		cmp:       atLeast,
		format:    plain,
		warning:   tier{80, "Rain very likely today", "Chance of precipitation is %s%%."},
		info:      tier{60, "Rain possible today", "Chance of precipitation is %s%%."},
	},
	{
		alertType: Wind,
		signal:    current("wind_speed_10m"),
		cmp:       atLeast,
		format:    rounded,
		warning:   tier{45, "Strong winds", "Current wind speed is ~%s km/h."},
		info:      tier{30, "Breezy conditions", "Current wind speed is ~%s km/h."},
	},
	{
		alertType: UV,
		signal:    current("uv_index"),
		cmp:       atLeast,
		format:    plain,
		warning:   tier{8, "High UV", "UV index is %s. Consider sunscreen and shade."},
		info:      tier{6, "Moderate/High UV", "UV index is %s. Protection recommended."},
	},
	{
		alertType: Freeze,
		signal:    dailyFirst("temperature_2m_min"),
		cmp:       atMost,
		format:    rounded,
		warning:   tier{-5, "Freezing risk overnight", "Low is ~%s°C."},
		info:      tier{0, "Near-freezing temperatures", "Low is ~%s°C."},
	},
	{
		alertType: Heat,
		signal:    dailyFirst("temperature_2m_max"),
		cmp:       atLeast,
		format:    rounded,
		warning:   tier{32, "Heat risk", "High is ~%s°C. Stay hydrated."},
		info:      tier{28, "Warm day", "High is ~%s°C."},
	},
}

func (r rule) evaluate(doc forecast.Document) (Alert, bool) {
	v, ok := r.signal(doc)
	if !ok {
		return Alert{}, false
	}
	for _, level := range []struct {
		severity Severity
		tier     tier
	}{{Warning, r.warning}, {Info, r.info}} {
		if r.cmp.holds(v, level.tier.threshold) {
			return Alert{
				Type:     r.alertType,
				Severity: level.severity,
				Title:    level.tier.title,
				Detail:   fmt.Sprintf(level.tier.detail, r.format(v)),
			}, true
		}
	}
	return Alert{}, false
}

// Build derives alerts from a forecast document. Missing sections and
// non-numeric values suppress the affected rule; Build never fails.
func Build(doc forecast.Document) []Alert {
	out := make([]Alert, 0, len(rules)+1)
	for _, r := range rules {
		if a, ok := r.evaluate(doc); ok {
			out = append(out, a)
		}
	}
	if a, ok := hourlyRain(doc); ok {
		out = append(out, a)
	}
	return out
}

// hourlyRain fires on the first of the next 12 hours whose precipitation
// probability reaches the threshold. Null probabilities count as 0.
func hourlyRain(doc forecast.Document) (Alert, bool) {
	hourly := doc.Section("hourly")
	probs := hourly.Series("precipitation_probability")
	times := hourly.Series("time")
	if probs.Len() < hourlyLookahead || times.Len() < hourlyLookahead {
		return Alert{}, false
	}
	for i := 0; i < hourlyLookahead; i++ {
		p, ok := probs.Number(i)
		if !ok || p < hourlyRainThreshold {
			continue
		}
		return Alert{
			Type:     Rain,
			Severity: Warning,
			Title:    "Rain likely soon",
			Detail:   fmt.Sprintf("High precipitation probability around %s (%s%%).", hourLabel(times, i), plain(p)),
		}, true
	}
	return Alert{}, false
}

func hourLabel(times forecast.Series, i int) string {
	if s, ok := times.String(i); ok {
		return strings.ReplaceAll(s, "T", " ")
	}
	if v, ok := times.Number(i); ok {
		return plain(v)
	}
	return ""
}

func current(field string) func(forecast.Document) (float64, bool) {
	return func(doc forecast.Document) (float64, bool) {
		return doc.Section("current").Number(field)
	}
}

func dailyFirst(field string) func(forecast.Document) (float64, bool) {
	return func(doc forecast.Document) (float64, bool) {
		return doc.Section("daily").Series(field).Number(0)
	}
}

// plain prints the shortest decimal form: 80 -> "80", 6.5 -> "6.5"
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// rounded rounds half to even before printing
func rounded(v float64) string {
	r := math.RoundToEven(v)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
