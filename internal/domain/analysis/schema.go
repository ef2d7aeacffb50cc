package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is a JSON schema primitive used in the response schema.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
)

// ResultFields are the keys every response schema must declare.
var ResultFields = []string{"sentiment", "confidence", "top_themes", "tone", "is_sarcastic", "summary"}

// Field describes one property of the response object.
type Field struct {
	Name        string    `yaml:"name" json:"name"`
	Type        FieldType `yaml:"type" json:"type"`
	Description string    `yaml:"description" json:"description"`
	Enum        []string  `yaml:"enum,omitempty" json:"enum,omitempty"`
	Items       FieldType `yaml:"items,omitempty" json:"items,omitempty"`
}

// Schema is the output contract sent to the model. Every field is required.
type Schema struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Fields      []Field `yaml:"fields" json:"fields"`
}

// Required returns the field names in declaration order.
func (s Schema) Required() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks field types and that the six result keys are all declared.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("schema name is required")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return errors.New("schema field without name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case TypeString, TypeNumber, TypeBoolean:
		case TypeArray:
			if f.Items == "" || f.Items == TypeArray {
				return fmt.Errorf("field %q: array items must be a primitive type", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unsupported type %q", f.Name, f.Type)
		}
	}
	for _, name := range ResultFields {
		if !seen[name] {
			return fmt.Errorf("schema is missing required field %q", name)
		}
	}
	return nil
}

// Prompt is the versioned instruction, schema and decoding setting for one analysis.
type Prompt struct {
	Version           string  `yaml:"version" json:"version"`
	SystemInstruction string  `yaml:"systemInstruction" json:"system_instruction"`
	Temperature       float32 `yaml:"temperature" json:"temperature"`
	Schema            Schema  `yaml:"schema" json:"schema"`
}

func (p Prompt) Validate() error {
	if strings.TrimSpace(p.Version) == "" {
		return errors.New("prompt version is required")
	}
	if strings.TrimSpace(p.SystemInstruction) == "" {
		return errors.New("prompt system instruction is required")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("prompt temperature %v out of range [0,2]", p.Temperature)
	}
	if err := p.Schema.Validate(); err != nil {
		return fmt.Errorf("prompt %s: %w", p.Version, err)
	}
	return nil
}
