// Package jsonschema renders backend vocabularies as JSON Schema documents
// so editors and validation pipelines can check option sheets against a
// backend's capability table.
package jsonschema

import (
	"fmt"

	plotopts "github.com/goliatone/go-plotopts"
)

const dialect = "https://json-schema.org/draft/2020-12/schema"

type generator struct{}

// NewGenerator constructs a JSON Schema generator for backend descriptors.
func NewGenerator() plotopts.SchemaGenerator {
	return generator{}
}

// Generate renders descriptor with a fresh generator.
func Generate(descriptor plotopts.BackendDescriptor) (plotopts.SchemaDocument, error) {
	return NewGenerator().Generate(descriptor)
}

func (generator) Generate(descriptor plotopts.BackendDescriptor) (plotopts.SchemaDocument, error) {
	if descriptor.Backend == "" {
		return plotopts.SchemaDocument{}, fmt.Errorf("jsonschema: backend name is required")
	}

	schema := map[string]any{
		"$schema":              dialect,
		"title":                fmt.Sprintf("%s options", descriptor.Backend),
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			string(plotopts.KindPlot):  kindSchema(descriptor, plotopts.KindPlot),
			string(plotopts.KindStyle): kindSchema(descriptor, plotopts.KindStyle),
		},
	}

	return plotopts.SchemaDocument{
		Format:   plotopts.SchemaFormatJSONSchema,
		Document: schema,
	}, nil
}

func kindSchema(descriptor plotopts.BackendDescriptor, kind plotopts.Kind) map[string]any {
	properties := map[string]any{}
	for _, option := range descriptor.Options {
		if option.Kind != kind {
			continue
		}
		properties[option.Name] = optionSchema(option)
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func optionSchema(option plotopts.VocabularyDescriptor) map[string]any {
	schema := map[string]any{}
	switch {
	case option.Unsupported:
		schema["description"] = "recognized but not supported by this backend"
		schema["deprecated"] = true
	case option.Native != "" && option.Native != option.Name:
		schema["description"] = fmt.Sprintf("maps to native %q", option.Native)
	default:
		schema["description"] = "passed through under its abstract name"
	}
	return schema
}
