// Package blueprint defines the structured automation workflow the provider
// is asked to generate, together with the schema that constrains it and the
// post-parse invariants that make it machine-checkable.
package blueprint

import (
	"fmt"

	"flowforge/internal/fault"
	"flowforge/internal/logging"
	"flowforge/internal/schema"
)

// Platform is the automation platform a blueprint targets.
type Platform string

const (
	PlatformZapier        Platform = "zapier"
	PlatformMake          Platform = "make"
	PlatformN8N           Platform = "n8n"
	PlatformPowerAutomate Platform = "power_automate"
	PlatformGeneric       Platform = "generic"
)

// Platforms lists the closed vocabulary sent to the provider.
var Platforms = []string{
	string(PlatformZapier),
	string(PlatformMake),
	string(PlatformN8N),
	string(PlatformPowerAutomate),
	string(PlatformGeneric),
}

// StepKind classifies a workflow step.
type StepKind string

const (
	StepTrigger StepKind = "trigger"
	StepAction  StepKind = "action"
	StepLogic   StepKind = "logic"
)

// Step is a single node of the workflow. IDs are positive and unique within
// a blueprint but not required to be contiguous.
type Step struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Kind        StepKind `json:"kind"`
}

// Source is a grounding citation attached by the provider.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Blueprint is a validated automation workflow.
type Blueprint struct {
	Platform    Platform `json:"platform"`
	Explanation string   `json:"explanation"`
	Steps       []Step   `json:"steps"`
	CodeSnippet string   `json:"codeSnippet,omitempty"`
	Sources     []Source `json:"sources,omitempty"`
}

// GenerationSchema is the single source of truth for the blueprint shape,
// sent to the provider as a generation constraint and applied locally at
// parse time.
func GenerationSchema() *schema.Descriptor {
	return &schema.Descriptor{
		Kind:     schema.Object,
		Required: []string{"platform", "explanation", "steps"},
		Properties: map[string]*schema.Descriptor{
			"platform": {
				Kind: schema.String,
				Enum: Platforms,
			},
			"explanation": {
				Kind:        schema.String,
				Description: "Plain-language summary of how the workflow achieves the goal",
			},
			"steps": {
				Kind: schema.Array,
				Items: &schema.Descriptor{
					Kind:     schema.Object,
					Required: []string{"id", "title", "description", "kind"},
					Properties: map[string]*schema.Descriptor{
						"id":          {Kind: schema.Integer},
						"title":       {Kind: schema.String},
						"description": {Kind: schema.String},
						"kind": {
							Kind: schema.String,
							Enum: []string{string(StepTrigger), string(StepAction), string(StepLogic)},
						},
					},
				},
			},
			"codeSnippet": {Kind: schema.String},
			"sources": {
				Kind: schema.Array,
				Items: &schema.Descriptor{
					Kind:     schema.Object,
					Required: []string{"title", "uri"},
					Properties: map[string]*schema.Descriptor{
						"title": {Kind: schema.String},
						"uri":   {Kind: schema.String},
					},
				},
			},
		},
	}
}

// Parse turns raw provider output into a Blueprint, applying the structural
// schema and then the data-model invariants.
func Parse(raw string) (*Blueprint, error) {
	var bp Blueprint
	if err := schema.Parse(raw, GenerationSchema(), &bp); err != nil {
		return nil, err
	}
	if err := bp.Check(); err != nil {
		return nil, err
	}
	return &bp, nil
}

// Check enforces the invariants the structural validator deliberately does
// not: steps are non-empty and ids are positive and unique. A workflow that
// does not open with a trigger is unusual but not an error.
func (b *Blueprint) Check() error {
	if len(b.Steps) == 0 {
		return fmt.Errorf("%w: blueprint has no steps", fault.ErrMalformedOutput)
	}
	seen := make(map[int]bool, len(b.Steps))
	for _, step := range b.Steps {
		if step.ID <= 0 {
			return fmt.Errorf("%w: step %q has non-positive id %d", fault.ErrMalformedOutput, step.Title, step.ID)
		}
		if seen[step.ID] {
			return fmt.Errorf("%w: duplicate step id %d", fault.ErrMalformedOutput, step.ID)
		}
		seen[step.ID] = true
	}
	if b.Steps[0].Kind != StepTrigger {
		logging.Schema("blueprint: first step %d is %s, not a trigger", b.Steps[0].ID, b.Steps[0].Kind)
	}
	return nil
}

// StepIDs returns the step ids in declaration order.
func (b *Blueprint) StepIDs() []int {
	ids := make([]int, len(b.Steps))
	for i, step := range b.Steps {
		ids[i] = step.ID
	}
	return ids
}
