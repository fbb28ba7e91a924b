// Package weather fetches and normalizes provider payloads into a compact,
// schema-stable snapshot. The provider speaks the wttr.in j1 dialect: a
// "current_condition" list and a per-day "weather" list whose entries carry
// an "hourly" breakdown.
package weather

import (
	"fmt"
	"strconv"

	commonerrors "weather-assistant/internal/common/errors"
)

const (
	minForecastDays = 1
	maxForecastDays = 5
)

// Current is the normalized present-moment record. Every numeric field is
// always populated, defaulting to zero when the provider omits it, so
// downstream code never branches on missing keys.
type Current struct {
	TempC      float64 `json:"temp_c"`
	FeelsLikeC float64 `json:"feels_like_c"`
	Condition  string  `json:"condition"`
	Humidity   float64 `json:"humidity"`
	WindKmph   float64 `json:"wind_kmph"`
	PrecipMM   float64 `json:"precip_mm"`
}

// ForecastDay is one normalized day of the forecast.
type ForecastDay struct {
	Date      string  `json:"date"`
	MaxTempC  float64 `json:"max_temp_c"`
	MinTempC  float64 `json:"min_temp_c"`
	Condition string  `json:"condition"`
	PrecipMM  float64 `json:"precip_mm"`
}

// Snapshot is the normalized weather record consumed by answer formatting.
// It is created fresh per fetch and never mutated after construction.
type Snapshot struct {
	Current  Current       `json:"current"`
	Forecast []ForecastDay `json:"forecast"`
}

// Normalize maps a raw provider payload into a Snapshot. forecastDays is
// clamped into [1,5]. Individual missing fields default to zero or empty;
// only a payload that is not shaped like a weather response at all fails,
// and then all-or-nothing with a NormalizationError.
func Normalize(payload map[string]interface{}, forecastDays int) (*Snapshot, error) {
	days := clampDays(forecastDays)

	currentList, ok := payload["current_condition"].([]interface{})
	if !ok || len(currentList) == 0 {
		return nil, commonerrors.NewNormalizationError("missing or empty current_condition list")
	}
	currentRaw, ok := currentList[0].(map[string]interface{})
	if !ok {
		return nil, commonerrors.NewNormalizationError("current_condition entry is not an object")
	}

	current := Current{
		TempC:      numField(currentRaw, "temp_C"),
		FeelsLikeC: numField(currentRaw, "FeelsLikeC"),
		Condition:  conditionText(currentRaw),
		Humidity:   numField(currentRaw, "humidity"),
		WindKmph:   numField(currentRaw, "windspeedKmph"),
		PrecipMM:   numField(currentRaw, "precipMM"),
	}

	daysList, ok := payload["weather"].([]interface{})
	if !ok {
		return nil, commonerrors.NewNormalizationError("missing weather forecast list")
	}
	if len(daysList) > days {
		daysList = daysList[:days]
	}

	forecast := make([]ForecastDay, 0, len(daysList))
	for i, entry := range daysList {
		dayRaw, ok := entry.(map[string]interface{})
		if !ok {
			return nil, commonerrors.NewNormalizationError(fmt.Sprintf("weather entry %d is not an object", i))
		}

		day := ForecastDay{
			Date:     strField(dayRaw, "date"),
			MaxTempC: numField(dayRaw, "maxtempC"),
			MinTempC: numField(dayRaw, "mintempC"),
		}

		// The middle hourly slot is a deterministic, cheap proxy for the
		// day's representative weather.
		if hourly, ok := dayRaw["hourly"].([]interface{}); ok && len(hourly) > 0 {
			if slot, ok := hourly[len(hourly)/2].(map[string]interface{}); ok {
				day.Condition = conditionText(slot)
				day.PrecipMM = numField(slot, "precipMM")
			}
		}

		forecast = append(forecast, day)
	}

	return &Snapshot{Current: current, Forecast: forecast}, nil
}

func clampDays(n int) int {
	if n < minForecastDays {
		return minForecastDays
	}
	if n > maxForecastDays {
		return maxForecastDays
	}
	return n
}

// numField reads a numeric field that the provider may emit as a number or
// a quoted string, defaulting to zero when absent or unparseable.
func numField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func strField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// conditionText reads the provider's weatherDesc list: [{"value": "Sunny"}].
func conditionText(m map[string]interface{}) string {
	descs, ok := m["weatherDesc"].([]interface{})
	if !ok || len(descs) == 0 {
		return ""
	}
	first, ok := descs[0].(map[string]interface{})
	if !ok {
		return ""
	}
	return strField(first, "value")
}
