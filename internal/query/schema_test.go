package query

import (
	"testing"

	commonerrors "weather-assistant/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema()
	require.NoError(t, err)
	return s
}

func TestValidate_AcceptsWellFormedQuery(t *testing.T) {
	s := newTestSchema(t)

	parsed, err := s.Validate(map[string]interface{}{
		"time_period":       "2025-01-02",
		"location":          "Perth",
		"weather_attribute": "precipitation",
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", parsed.TimePeriod())
	assert.Equal(t, "Perth", parsed.Location())
	assert.Equal(t, "precipitation", parsed.Attribute())
}

func TestValidate_AcceptsDateRange(t *testing.T) {
	s := newTestSchema(t)

	parsed, err := s.Validate(map[string]interface{}{
		"time_period":       "2025-01-02/2025-01-05",
		"location":          "Oslo",
		"weather_attribute": "forecast",
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-01-02/2025-01-05", parsed.TimePeriod())
}

func TestValidate_ShapeOnlyDateCheck(t *testing.T) {
	// Calendar validity is out of scope; 2024-02-30 has the right shape.
	s := newTestSchema(t)

	_, err := s.Validate(map[string]interface{}{
		"time_period":       "2024-02-30",
		"location":          "Perth",
		"weather_attribute": "now",
	})

	assert.NoError(t, err)
}

func TestValidate_RejectsRelativeTimePhrase(t *testing.T) {
	s := newTestSchema(t)

	_, err := s.Validate(map[string]interface{}{
		"time_period":       "tomorrow",
		"location":          "Perth",
		"weather_attribute": "precipitation",
	})

	verr, ok := commonerrors.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 1)
	assert.Equal(t, "time_period", verr.Fields[0].Field)
}

func TestValidate_RejectsUnknownAttribute(t *testing.T) {
	s := newTestSchema(t)

	tests := []struct {
		name      string
		attribute string
	}{
		{"synonym outside the set", "rain"},
		{"capitalized member", "Temperature"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(map[string]interface{}{
				"time_period":       "2025-01-02",
				"location":          "Perth",
				"weather_attribute": tt.attribute,
			})

			verr, ok := commonerrors.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, "weather_attribute", verr.Fields[0].Field)
		})
	}
}

func TestValidate_RejectsMissingKeys(t *testing.T) {
	s := newTestSchema(t)

	_, err := s.Validate(map[string]interface{}{
		"location": "Perth",
	})

	verr, ok := commonerrors.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 2)

	offenders := make(map[string]bool)
	for _, f := range verr.Fields {
		offenders[f.Field] = true
	}
	assert.True(t, offenders["time_period"])
	assert.True(t, offenders["weather_attribute"])
}

func TestValidate_RejectsBlankLocation(t *testing.T) {
	s := newTestSchema(t)

	tests := []struct {
		name     string
		location string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(map[string]interface{}{
				"time_period":       "2025-01-02",
				"location":          tt.location,
				"weather_attribute": "now",
			})

			verr, ok := commonerrors.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, "location", verr.Fields[0].Field)
		})
	}
}

func TestValidate_TrimsLocation(t *testing.T) {
	s := newTestSchema(t)

	parsed, err := s.Validate(map[string]interface{}{
		"time_period":       "2025-01-02",
		"location":          "  Perth  ",
		"weather_attribute": "now",
	})

	require.NoError(t, err)
	assert.Equal(t, "Perth", parsed.Location())
}

func TestValidate_Deterministic(t *testing.T) {
	s := newTestSchema(t)
	raw := map[string]interface{}{
		"time_period":       "2025-01-02",
		"location":          "Perth",
		"weather_attribute": "wind",
	}

	first, err := s.Validate(raw)
	require.NoError(t, err)
	second, err := s.Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestInstruction_CoversTheContract(t *testing.T) {
	s := newTestSchema(t)
	prompt := s.Instruction()

	assert.Contains(t, prompt, FieldTimePeriod)
	assert.Contains(t, prompt, FieldLocation)
	assert.Contains(t, prompt, FieldAttribute)
	for _, attr := range Attributes {
		assert.Contains(t, prompt, attr)
	}
}
