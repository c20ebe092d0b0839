package jsonschema

// Schema is a minimal JSON Schema representation used for documentation
// export of parameter classes.
type Schema struct {
	// Core
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        any    `json:"type,omitempty"` // string, or []string for nullable fields
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PropertyOrder        []string           `json:"propertyOrder,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}
