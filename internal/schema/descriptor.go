// Package schema implements the structured-output contract: a declarative
// schema tree that is handed to the provider as a generation constraint and
// applied locally as a parse constraint, so the two can never drift apart.
package schema

// Kind is the JSON shape a descriptor constrains.
type Kind string

const (
	Object  Kind = "object"
	Array   Kind = "array"
	String  Kind = "string"
	Integer Kind = "integer"
	Number  Kind = "number"
	Boolean Kind = "boolean"
)

// Descriptor is a node in the schema tree. Enum entries turn a String node
// into a closed vocabulary.
type Descriptor struct {
	Kind        Kind
	Description string
	Properties  map[string]*Descriptor // Object only
	Required    []string               // Object only
	Items       *Descriptor            // Array only
	Enum        []string               // String only
}

// JSONSchema renders the descriptor as the raw schema object Gemini expects
// in generationConfig.responseJsonSchema.
func (d *Descriptor) JSONSchema() map[string]interface{} {
	out := map[string]interface{}{
		"type": string(d.Kind),
	}
	if d.Description != "" {
		out["description"] = d.Description
	}
	if len(d.Enum) > 0 {
		out["enum"] = d.Enum
	}
	if d.Kind == Object {
		props := make(map[string]interface{}, len(d.Properties))
		for name, child := range d.Properties {
			props[name] = child.JSONSchema()
		}
		if len(props) > 0 {
			out["properties"] = props
		}
		if len(d.Required) > 0 {
			out["required"] = d.Required
		}
	}
	if d.Kind == Array && d.Items != nil {
		out["items"] = d.Items.JSONSchema()
	}
	return out
}
