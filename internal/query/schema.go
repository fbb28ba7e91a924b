// Package query turns free-form user text into a strictly-typed weather
// query. The schema here is the single source of truth for the query
// contract: the validator and the system instruction sent to the model are
// both derived from the same definition so the two cannot drift.
package query

import (
	"fmt"
	"strings"

	commonerrors "weather-assistant/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

const (
	FieldTimePeriod = "time_period"
	FieldLocation   = "location"
	FieldAttribute  = "weather_attribute"
)

// Attributes is the closed set of weather attributes a query may request.
// Any value outside it is invalid by definition.
var Attributes = []string{
	"temperature",
	"precipitation",
	"humidity",
	"wind",
	"uv",
	"aqi",
	"forecast",
	"now",
}

// timePeriodPattern accepts a single ISO calendar date or a slash-separated
// date range. Shape only: calendar validity (e.g. 2024-02-30) is the
// responsibility of the eventual date consumer.
const timePeriodPattern = `^\d{4}-\d{2}-\d{2}(/\d{4}-\d{2}-\d{2})?$`

// ParsedQuery is the immutable, validated query value. It is only
// constructed by Schema.Validate; downstream code may rely on every field
// having passed the contract checks.
type ParsedQuery struct {
	timePeriod string
	location   string
	attribute  string
}

func (q ParsedQuery) TimePeriod() string { return q.timePeriod }
func (q ParsedQuery) Location() string   { return q.location }
func (q ParsedQuery) Attribute() string  { return q.attribute }

// Schema validates raw extractions against the query contract.
type Schema struct {
	compiled *gojsonschema.Schema
}

func NewSchema() (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(Document()))
	if err != nil {
		return nil, fmt.Errorf("compile query schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Document returns the JSON Schema document the validator enforces.
func Document() map[string]interface{} {
	attrs := make([]interface{}, len(Attributes))
	for i, a := range Attributes {
		attrs[i] = a
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			FieldTimePeriod: map[string]interface{}{
				"type":    "string",
				"pattern": timePeriodPattern,
			},
			FieldLocation: map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			FieldAttribute: map[string]interface{}{
				"type": "string",
				"enum": attrs,
			},
		},
		"required": []interface{}{FieldTimePeriod, FieldLocation, FieldAttribute},
	}
}

// Instruction renders the contract as the fixed system prompt for the
// extraction model. It enumerates the three required keys and the allowed
// attribute set from the same constants the validator uses.
func (s *Schema) Instruction() string {
	var b strings.Builder
	b.WriteString("You are a weather query parser. Convert the user's question into a single JSON object and return ONLY that object, no conversational text.\n\n")
	b.WriteString("The object must contain exactly these keys:\n")
	fmt.Fprintf(&b, "- %q: an ISO-8601 date \"YYYY-MM-DD\" or a date range \"YYYY-MM-DD/YYYY-MM-DD\" (never a relative phrase like \"tomorrow\")\n", FieldTimePeriod)
	fmt.Fprintf(&b, "- %q: the place the question is about, as a non-empty string\n", FieldLocation)
	fmt.Fprintf(&b, "- %q: exactly one of: %s\n", FieldAttribute, strings.Join(Attributes, ", "))
	return b.String()
}

// Validate checks a raw extraction against the contract and constructs a
// ParsedQuery only when every check passes. On failure the returned
// ValidationError names each offending field; that detail is the surface the
// repair loop builds its follow-up instruction from.
func (s *Schema) Validate(raw map[string]interface{}) (ParsedQuery, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return ParsedQuery{}, commonerrors.NewValidationError(raw, []commonerrors.FieldError{
			{Field: "(root)", Message: err.Error()},
		})
	}

	var fields []commonerrors.FieldError
	for _, desc := range result.Errors() {
		fields = append(fields, commonerrors.FieldError{
			Field:   fieldName(desc),
			Message: desc.Description(),
		})
	}

	// minLength catches the empty string; whitespace-only needs a trim check.
	if loc, ok := raw[FieldLocation].(string); ok && strings.TrimSpace(loc) == "" && !hasField(fields, FieldLocation) {
		fields = append(fields, commonerrors.FieldError{
			Field:   FieldLocation,
			Message: "must not be blank",
		})
	}

	if len(fields) > 0 {
		return ParsedQuery{}, commonerrors.NewValidationError(raw, fields)
	}

	return ParsedQuery{
		timePeriod: raw[FieldTimePeriod].(string),
		location:   strings.TrimSpace(raw[FieldLocation].(string)),
		attribute:  raw[FieldAttribute].(string),
	}, nil
}

// fieldName maps a schema violation to the offending property. Required
// violations report against the root, so the property is read from the
// error details instead.
func fieldName(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			return prop
		}
	}
	return desc.Field()
}

func hasField(fields []commonerrors.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
