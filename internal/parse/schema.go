// schema.go defines the output-schema variants a pane can declare.
package parse

// SchemaKind discriminates the supported response schemas.
type SchemaKind string

const (
	// KindText passes the raw response text through unchanged.
	KindText SchemaKind = "text"
	// KindTextList splits the response into one item per line.
	KindTextList SchemaKind = "text_list"
	// KindJSONList expects a JSON object with an array of strings under Field.
	KindJSONList SchemaKind = "json_list"
	// KindJSONObjects expects a JSON object with an array of objects under Field.
	KindJSONObjects SchemaKind = "json_objects"
)

// Property describes one declared field of a json_objects schema.
type Property struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Schema is the normalized, tagged form of a pane's declared output shape.
// Exactly the fields relevant to Kind are populated; the rest stay zero.
type Schema struct {
	Kind SchemaKind `json:"kind" yaml:"kind"`

	// Field names the JSON key holding the array for json_list/json_objects.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	// FallbackFields are tried in order when Field is absent (json_list only).
	FallbackFields []string `json:"fallback_fields,omitempty" yaml:"fallback_fields,omitempty"`

	// Properties declares the expected object fields (json_objects only).
	Properties map[string]Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	// RequiredFields lists fields every valid record should carry; the first
	// one doubles as the primary display value.
	RequiredFields []string `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	// DisplayFields are rendered into the human-readable item line.
	DisplayFields []string `json:"display_fields,omitempty" yaml:"display_fields,omitempty"`
}

// TextSchema returns the pass-through schema.
func TextSchema() Schema { return Schema{Kind: KindText} }

// TextListSchema returns the line-splitting schema.
func TextListSchema() Schema { return Schema{Kind: KindTextList} }

// JSONListSchema returns a json_list schema for the given field with optional
// fallbacks.
func JSONListSchema(field string, fallbacks ...string) Schema {
	return Schema{Kind: KindJSONList, Field: field, FallbackFields: fallbacks}
}
