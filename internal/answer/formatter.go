// Package answer renders a normalized weather snapshot into the plain-text
// reply for a parsed query.
package answer

import (
	"fmt"
	"strings"

	"weather-assistant/internal/query"
	"weather-assistant/internal/weather"
)

// Format produces the answer line(s) for the attribute the query asked for.
// It is total over the attribute set the query schema admits; an attribute
// the snapshot cannot answer gets an honest "not in this report" reply
// rather than an error.
func Format(q query.ParsedQuery, snap *weather.Snapshot) string {
	switch q.Attribute() {
	case "temperature":
		return fmt.Sprintf("It is %.0f°C in %s right now (feels like %.0f°C).",
			snap.Current.TempC, q.Location(), snap.Current.FeelsLikeC)

	case "precipitation":
		if snap.Current.PrecipMM > 0 {
			return fmt.Sprintf("There is precipitation in %s: %.1f mm, %s.",
				q.Location(), snap.Current.PrecipMM, strings.ToLower(snap.Current.Condition))
		}
		return fmt.Sprintf("No precipitation in %s right now (%s).",
			q.Location(), strings.ToLower(snap.Current.Condition))

	case "humidity":
		return fmt.Sprintf("Humidity in %s is %.0f%%.", q.Location(), snap.Current.Humidity)

	case "wind":
		return fmt.Sprintf("Wind in %s is %.0f km/h.", q.Location(), snap.Current.WindKmph)

	case "uv", "aqi":
		return fmt.Sprintf("Sorry, %s data for %s is not in this weather report.",
			q.Attribute(), q.Location())

	case "forecast":
		return formatForecast(q.Location(), snap.Forecast)

	case "now":
		return fmt.Sprintf("%s right now: %s, %.0f°C (feels like %.0f°C), humidity %.0f%%, wind %.0f km/h.",
			q.Location(), snap.Current.Condition, snap.Current.TempC,
			snap.Current.FeelsLikeC, snap.Current.Humidity, snap.Current.WindKmph)
	}

	// Unreachable for queries built through the schema, but the formatter
	// stays total regardless.
	return fmt.Sprintf("Sorry, I cannot answer %q for %s.", q.Attribute(), q.Location())
}

func formatForecast(location string, days []weather.ForecastDay) string {
	if len(days) == 0 {
		return fmt.Sprintf("No forecast available for %s.", location)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Forecast for %s:\n", location)
	for _, d := range days {
		fmt.Fprintf(&b, "  %s: %s, %.0f°C to %.0f°C, %.1f mm precipitation\n",
			d.Date, d.Condition, d.MinTempC, d.MaxTempC, d.PrecipMM)
	}
	return strings.TrimRight(b.String(), "\n")
}
