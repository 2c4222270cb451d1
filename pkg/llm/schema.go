package llm

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Schema is the subset of JSON Schema used for strict structured output.
type Schema struct {
	Type                 string             `json:"type"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func String() *Schema {
	return &Schema{Type: "string"}
}

func Array(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// Object builds a closed object where every property is required.
func Object(props map[string]*Schema) *Schema {
	closed := false
	return &Schema{
		Type:                 "object",
		Properties:           props,
		Required:             slices.Sorted(maps.Keys(props)),
		AdditionalProperties: &closed,
	}
}

type violation struct {
	path   string
	reason string
}

func (v *violation) Error() string {
	return fmt.Sprintf("%s: %s", v.path, v.reason)
}

// validate walks value against s. Strings must be non-blank; objects must
// carry every required property.
func validate(s *Schema, value any, path string) *violation {
	if s == nil {
		return nil
	}

	switch s.Type {
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return &violation{path, "expected object"}
		}
		for _, name := range s.Required {
			if _, ok := obj[name]; !ok {
				return &violation{path + "." + name, "missing required property"}
			}
		}
		for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
			v, ok := obj[name]
			if !ok {
				continue
			}
			if err := validate(s.Properties[name], v, path+"."+name); err != nil {
				return err
			}
		}
	case "array":
		arr, ok := value.([]any)
		if !ok {
			return &violation{path, "expected array"}
		}
		for i, item := range arr {
			if err := validate(s.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case "string":
		str, ok := value.(string)
		if !ok {
			return &violation{path, "expected string"}
		}
		if strings.TrimSpace(str) == "" {
			return &violation{path, "empty string"}
		}
	case "number", "integer":
		if _, ok := value.(float64); !ok {
			return &violation{path, "expected number"}
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return &violation{path, "expected boolean"}
		}
	}
	return nil
}
