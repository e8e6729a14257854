// Package validation validates request payloads against JSON schemas and
// reports field-level errors so 400 responses can enumerate what is missing.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ErrorMessage flattens the field errors into one enumerating message,
// e.g. "phone is required, consent_flg is required".
func (r *Result) ErrorMessage() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return strings.Join(parts, ", ")
}

// MissingFields returns the names of required fields reported absent.
func (r *Result) MissingFields() []string {
	var fields []string
	for _, e := range r.Errors {
		if e.Message == "is required" {
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Validate checks a decoded JSON document against a schema expressed as a Go
// map (draft-04 style, same shape the template registry uses).
func Validate(doc map[string]interface{}, schema map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return &Result{Valid: true}, nil
	}

	out := &Result{Valid: false}
	for _, resErr := range result.Errors() {
		field := resErr.Field()
		message := resErr.Description()
		// gojsonschema reports required-field misses against the parent
		// object; surface the property name instead.
		if resErr.Type() == "required" {
			if prop, ok := resErr.Details()["property"].(string); ok {
				field = prop
			}
			message = "is required"
		}
		out.Errors = append(out.Errors, ValidationError{Field: field, Message: message})
	}
	return out, nil
}

// RequiredObject is a shorthand schema for "object with these required keys".
func RequiredObject(required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": required,
	}
}
