package llm

import "encoding/json"

// JSONSchema represents a JSON Schema definition for function parameters
// and structured-output formats.
type JSONSchema struct {
	Type        string                 `json:"-"`
	Nullable    bool                   `json:"-"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"` // for array type
}

// MarshalJSON writes "type" as a string, or as [type, "null"] when Nullable.
// A nullable enum also lists null among its values, otherwise the enum
// keyword would still reject it.
func (s *JSONSchema) MarshalJSON() ([]byte, error) {
	type plain JSONSchema
	var typ any = s.Type
	var enum []any
	for _, v := range s.Enum {
		enum = append(enum, v)
	}
	if s.Nullable {
		typ = []string{s.Type, "null"}
		if len(enum) > 0 {
			enum = append(enum, nil)
		}
	}
	return json.Marshal(struct {
		Type any   `json:"type"`
		Enum []any `json:"enum,omitempty"`
		*plain
	}{Type: typ, Enum: enum, plain: (*plain)(s)})
}

// FunctionDef describes a function the model is directed to call. Its
// arguments become the reply text.
type FunctionDef struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  *JSONSchema `json:"parameters"`
}

// ObjectSchema creates a JSON Schema for an object with the given properties.
func ObjectSchema(desc string, props map[string]*JSONSchema, required ...string) *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: desc,
		Properties:  props,
		Required:    required,
	}
}

// StringProp creates a JSON Schema for a string property.
func StringProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc}
}

// IntProp creates a JSON Schema for an integer property.
func IntProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: desc}
}

// EnumProp creates a JSON Schema for a string enum property.
func EnumProp(desc string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc, Enum: values}
}

// OrNull marks s as also accepting null and returns it.
func OrNull(s *JSONSchema) *JSONSchema {
	s.Nullable = true
	return s
}
