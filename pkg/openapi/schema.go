package openapi

// Schema is the JSON Schema subset the service documents with.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Example     any                `json:"example,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// SchemaRef points at a named component schema.
func SchemaRef(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Range is a number bounded on both ends.
func Range(lo, hi float64, description string) *Schema {
	return &Schema{Type: "number", Minimum: &lo, Maximum: &hi, Description: description}
}

func Array(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// Object lists properties; every name in required must be a key of props.
func Object(required []string, props map[string]*Schema) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

// OneOf restricts s to the given values and returns it.
func (s *Schema) OneOf(values ...any) *Schema {
	s.Enum = values
	return s
}

// WithExample attaches an example value and returns s.
func (s *Schema) WithExample(v any) *Schema {
	s.Example = v
	return s
}
