package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// scalar matches a value that may be a number, a string, or null. Source
// data mixes representations freely (year 1893 vs "1893", lat "" when
// unknown), so anything stricter would reject real files.
var scalar = map[string]any{"type": []string{"number", "string", "null"}}

// EventSchema describes one life event as produced by the enrichment
// service and as persisted on disk.
var EventSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"year":   scalar,
		"age":    scalar,
		"place":  map[string]any{"type": "string"},
		"lat":    scalar,
		"lon":    scalar,
		"title":  map[string]any{"type": "string"},
		"detail": map[string]any{"type": "string"},
	},
}

// EventsSchema matches the JSON array the enrichment model is asked to emit.
var EventsSchema = map[string]any{
	"type":  "array",
	"items": EventSchema,
}

// DatasetSchema describes the persisted people.json document.
var DatasetSchema = map[string]any{
	"type":     "object",
	"required": []string{"persons"},
	"properties": map[string]any{
		"persons": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"style": map[string]any{
						"type": []string{"object", "null"},
						"properties": map[string]any{
							"markerColor": map[string]any{"type": "string"},
							"lineColor":   map[string]any{"type": "string"},
						},
					},
					"events": EventsSchema,
				},
			},
		},
	},
}

// Validator handles JSON schema validation for dataset documents and
// enrichment payloads. It caches compiled schemas.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the JSON document against the provided schema. The
// schema can be a map[string]any, a JSON string, or a struct.
func (v *Validator) Validate(schemaData any, doc []byte) error {
	schema, err := v.compiled(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed:\n- %s", dumpErrors(errs))
}

func (v *Validator) compiled(schemaData any) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	key := string(jsonBytes)

	if val, ok := v.cache.Load(key); ok {
		return val.(*gojsonschema.Schema), nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, schema)
	return schema, nil
}

func dumpErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0]
	}
	// keep the first 3 to avoid massive output
	truncated := ""
	if len(errs) > 3 {
		truncated = fmt.Sprintf("\n... and %d more", len(errs)-3)
		errs = errs[:3]
	}

	result := ""
	for i, e := range errs {
		if i > 0 {
			result += "\n- "
		}
		result += e
	}
	return result + truncated
}
