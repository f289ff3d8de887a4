package schema

import (
	"errors"
	"testing"

	"flowforge/internal/fault"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"language tagged", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no trailing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"fences with padding", "\n```json\n  {\"a\":1}  \n```\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func testSchema() *Descriptor {
	return &Descriptor{
		Kind:     Object,
		Required: []string{"platform", "explanation", "steps"},
		Properties: map[string]*Descriptor{
			"platform":    {Kind: String, Enum: []string{"zapier", "make"}},
			"explanation": {Kind: String},
			"steps": {
				Kind: Array,
				Items: &Descriptor{
					Kind:     Object,
					Required: []string{"id", "title"},
					Properties: map[string]*Descriptor{
						"id":    {Kind: Integer},
						"title": {Kind: String},
					},
				},
			},
		},
	}
}

const validDoc = `{"platform":"zapier","explanation":"does things","steps":[{"id":1,"title":"Trigger"}]}`

type testTarget struct {
	Platform    string `json:"platform"`
	Explanation string `json:"explanation"`
	Steps       []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"steps"`
}

func TestParse_FencedAndUnfencedAreIdentical(t *testing.T) {
	var plain, fenced testTarget
	if err := Parse(validDoc, testSchema(), &plain); err != nil {
		t.Fatalf("unfenced parse failed: %v", err)
	}
	if err := Parse("```json\n"+validDoc+"\n```", testSchema(), &fenced); err != nil {
		t.Fatalf("fenced parse failed: %v", err)
	}
	if plain.Platform != fenced.Platform || len(plain.Steps) != len(fenced.Steps) {
		t.Errorf("fenced result %+v differs from unfenced %+v", fenced, plain)
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "this is not json"},
		{"truncated", `{"platform":"zapier","explanation":`},
		{"missing required field", `{"platform":"zapier","steps":[]}`},
		{"wrong primitive kind", `{"platform":"zapier","explanation":7,"steps":[]}`},
		{"enum violation", `{"platform":"airtable","explanation":"x","steps":[]}`},
		{"bad array item", `{"platform":"zapier","explanation":"x","steps":[{"id":"one","title":"t"}]}`},
		{"fractional integer", `{"platform":"zapier","explanation":"x","steps":[{"id":1.5,"title":"t"}]}`},
		{"array where object expected", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out testTarget
			err := Parse(tt.input, testSchema(), &out)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, fault.ErrMalformedOutput) {
				t.Errorf("error %v is not ErrMalformedOutput", err)
			}
		})
	}
}

func TestValidate_OptionalFieldsMaySkip(t *testing.T) {
	d := &Descriptor{
		Kind:     Object,
		Required: []string{"a"},
		Properties: map[string]*Descriptor{
			"a": {Kind: String},
			"b": {Kind: Integer},
		},
	}
	if err := d.Validate(map[string]interface{}{"a": "x"}); err != nil {
		t.Errorf("optional field absence should validate: %v", err)
	}
	if err := d.Validate(map[string]interface{}{"a": "x", "b": "nope"}); err == nil {
		t.Error("present optional field with wrong kind should fail")
	}
}

func TestJSONSchema_Rendering(t *testing.T) {
	rendered := testSchema().JSONSchema()
	if rendered["type"] != "object" {
		t.Errorf("type = %v, want object", rendered["type"])
	}
	props, ok := rendered["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties missing")
	}
	platform, ok := props["platform"].(map[string]interface{})
	if !ok {
		t.Fatal("platform property missing")
	}
	if enum, ok := platform["enum"].([]string); !ok || len(enum) != 2 {
		t.Errorf("platform enum = %v, want 2 entries", platform["enum"])
	}
	steps := props["steps"].(map[string]interface{})
	if _, ok := steps["items"]; !ok {
		t.Error("steps items missing")
	}
	if req, ok := rendered["required"].([]string); !ok || len(req) != 3 {
		t.Errorf("required = %v, want 3 entries", rendered["required"])
	}
}
