package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"flowforge/internal/fault"
	"flowforge/internal/logging"
)

// Sanitize strips a single optional leading markdown code fence (with or
// without a language tag) and a single optional trailing fence, then trims
// surrounding whitespace. Providers wrap JSON in fences despite instructions
// to the contrary, so this runs before every parse.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline == -1 {
		return trimmed
	}
	content := trimmed[firstNewline+1:]
	if lastFence := strings.LastIndex(content, "```"); lastFence != -1 {
		content = content[:lastFence]
	}
	return strings.TrimSpace(content)
}

// Parse sanitizes raw, decodes it as JSON, validates the shape against d, and
// unmarshals the result into out. Failures are ErrMalformedOutput; the raw
// text goes to the debug log only.
func Parse(raw string, d *Descriptor, out interface{}) error {
	clean := Sanitize(raw)

	var value interface{}
	if err := json.Unmarshal([]byte(clean), &value); err != nil {
		logging.SchemaDebug("Parse: JSON syntax error: %v raw=%q", err, raw)
		return fmt.Errorf("%w: not valid JSON: %v", fault.ErrMalformedOutput, err)
	}

	if err := d.Validate(value); err != nil {
		logging.SchemaDebug("Parse: shape violation: %v raw=%q", err, raw)
		return fmt.Errorf("%w: %v", fault.ErrMalformedOutput, err)
	}

	if err := json.Unmarshal([]byte(clean), out); err != nil {
		logging.SchemaDebug("Parse: decode into target failed: %v raw=%q", err, raw)
		return fmt.Errorf("%w: %v", fault.ErrMalformedOutput, err)
	}
	return nil
}

// Validate checks value structurally against the descriptor: every required
// field must be present with the correct primitive kind, and array items are
// validated recursively. Semantic invariants (id uniqueness and the like) are
// the consumer's responsibility.
func (d *Descriptor) Validate(value interface{}) error {
	return d.validate(value, "$")
}

func (d *Descriptor) validate(value interface{}, path string) error {
	switch d.Kind {
	case Object:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, jsonKind(value))
		}
		for _, name := range d.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("%s: missing required field %q", path, name)
			}
		}
		for name, child := range d.Properties {
			fieldValue, present := obj[name]
			if !present {
				continue
			}
			if err := child.validate(fieldValue, path+"."+name); err != nil {
				return err
			}
		}
	case Array:
		arr, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, jsonKind(value))
		}
		if d.Items != nil {
			for i, item := range arr {
				if err := d.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %s", path, jsonKind(value))
		}
		if len(d.Enum) > 0 && !containsString(d.Enum, s) {
			return fmt.Errorf("%s: %q is not one of %v", path, s, d.Enum)
		}
	case Integer:
		n, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%s: expected integer, got %s", path, jsonKind(value))
		}
		if n != math.Trunc(n) {
			return fmt.Errorf("%s: expected integer, got fractional number %v", path, n)
		}
	case Number:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("%s: expected number, got %s", path, jsonKind(value))
		}
	case Boolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %s", path, jsonKind(value))
		}
	default:
		return fmt.Errorf("%s: unknown schema kind %q", path, d.Kind)
	}
	return nil
}

func jsonKind(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
