package weather

import (
	"testing"

	commonerrors "weather-assistant/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerPayload(days int) map[string]interface{} {
	payload := map[string]interface{}{
		"current_condition": []interface{}{
			map[string]interface{}{
				"temp_C":        "21",
				"FeelsLikeC":    "19",
				"humidity":      "65",
				"windspeedKmph": "14",
				"precipMM":      "0.2",
				"weatherDesc":   []interface{}{map[string]interface{}{"value": "Partly cloudy"}},
			},
		},
	}

	forecast := make([]interface{}, 0, days)
	dates := []string{"2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06"}
	for i := 0; i < days; i++ {
		forecast = append(forecast, map[string]interface{}{
			"date":     dates[i],
			"maxtempC": "28",
			"mintempC": "17",
			"hourly": []interface{}{
				map[string]interface{}{"precipMM": "0.0", "weatherDesc": []interface{}{map[string]interface{}{"value": "Clear"}}},
				map[string]interface{}{"precipMM": "1.5", "weatherDesc": []interface{}{map[string]interface{}{"value": "Sunny"}}},
				map[string]interface{}{"precipMM": "9.9", "weatherDesc": []interface{}{map[string]interface{}{"value": "Rain"}}},
			},
		})
	}
	payload["weather"] = forecast
	return payload
}

func TestNormalize_MapsCurrentConditions(t *testing.T) {
	snap, err := Normalize(providerPayload(3), 3)

	require.NoError(t, err)
	assert.Equal(t, 21.0, snap.Current.TempC)
	assert.Equal(t, 19.0, snap.Current.FeelsLikeC)
	assert.Equal(t, "Partly cloudy", snap.Current.Condition)
	assert.Equal(t, 65.0, snap.Current.Humidity)
	assert.Equal(t, 14.0, snap.Current.WindKmph)
	assert.Equal(t, 0.2, snap.Current.PrecipMM)
}

func TestNormalize_UsesMiddleHourlySlot(t *testing.T) {
	snap, err := Normalize(providerPayload(1), 1)

	require.NoError(t, err)
	require.Len(t, snap.Forecast, 1)
	day := snap.Forecast[0]
	assert.Equal(t, "2025-01-02", day.Date)
	assert.Equal(t, 28.0, day.MaxTempC)
	assert.Equal(t, 17.0, day.MinTempC)
	// Three hourly slots, index 1 is the representative one.
	assert.Equal(t, "Sunny", day.Condition)
	assert.Equal(t, 1.5, day.PrecipMM)
}

func TestNormalize_TruncatesForecast(t *testing.T) {
	snap, err := Normalize(providerPayload(5), 2)

	require.NoError(t, err)
	require.Len(t, snap.Forecast, 2)
	assert.Equal(t, "2025-01-02", snap.Forecast[0].Date)
	assert.Equal(t, "2025-01-03", snap.Forecast[1].Date)
}

func TestNormalize_ClampsForecastDays(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"below range", 0, 1},
		{"negative", -3, 1},
		{"above range", 9, 5},
		{"in range", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Normalize(providerPayload(5), tt.requested)
			require.NoError(t, err)
			assert.Len(t, snap.Forecast, tt.expected)
		})
	}
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	payload := map[string]interface{}{
		"current_condition": []interface{}{
			map[string]interface{}{"temp_C": "18"},
		},
		"weather": []interface{}{
			map[string]interface{}{"date": "2025-01-02"},
		},
	}

	snap, err := Normalize(payload, 1)

	require.NoError(t, err)
	assert.Equal(t, 18.0, snap.Current.TempC)
	assert.Equal(t, 0.0, snap.Current.Humidity)
	assert.Equal(t, "", snap.Current.Condition)
	require.Len(t, snap.Forecast, 1)
	assert.Equal(t, 0.0, snap.Forecast[0].MaxTempC)
	assert.Equal(t, "", snap.Forecast[0].Condition)
}

func TestNormalize_CoercesNumericStrings(t *testing.T) {
	payload := providerPayload(1)
	current := payload["current_condition"].([]interface{})[0].(map[string]interface{})
	current["temp_C"] = 23.5
	current["humidity"] = "not a number"

	snap, err := Normalize(payload, 1)

	require.NoError(t, err)
	assert.Equal(t, 23.5, snap.Current.TempC)
	assert.Equal(t, 0.0, snap.Current.Humidity)
}

func TestNormalize_RejectsUnusablePayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"empty payload", map[string]interface{}{}},
		{
			"empty current_condition",
			map[string]interface{}{
				"current_condition": []interface{}{},
				"weather":           []interface{}{},
			},
		},
		{
			"current_condition not an object",
			map[string]interface{}{
				"current_condition": []interface{}{"21"},
				"weather":           []interface{}{},
			},
		},
		{
			"missing weather list",
			map[string]interface{}{
				"current_condition": []interface{}{map[string]interface{}{"temp_C": "21"}},
			},
		},
		{
			"weather entry not an object",
			map[string]interface{}{
				"current_condition": []interface{}{map[string]interface{}{"temp_C": "21"}},
				"weather":           []interface{}{"2025-01-02"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Normalize(tt.payload, 3)
			require.Error(t, err)
			assert.Nil(t, snap)
			assert.True(t, commonerrors.IsNormalization(err))
		})
	}
}
