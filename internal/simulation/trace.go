// Package simulation builds typed execution traces for dry-running a
// blueprint against a sample payload. The trace is parsed through the
// structured-output contract and then cross-checked against the blueprint so
// a hallucinated or reordered step can never reach the caller.
package simulation

import (
	"fmt"

	"flowforge/internal/blueprint"
	"flowforge/internal/fault"
	"flowforge/internal/logging"
	"flowforge/internal/schema"
)

// Status is the outcome of a step or of the whole run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped" // step outcomes only
)

// StepResult reports the simulated outcome of one blueprint step.
type StepResult struct {
	StepID    int    `json:"stepId"`
	Status    Status `json:"status"`
	Output    string `json:"output"`
	Reasoning string `json:"reasoning"`
}

// Trace is a full dry-run report. StepResults are in blueprint declaration
// order, one entry per step.
type Trace struct {
	OverallStatus Status       `json:"overallStatus"`
	Summary       string       `json:"summary"`
	StepResults   []StepResult `json:"stepResults"`
}

// TraceSchema is the structured-output contract for a simulation run.
func TraceSchema() *schema.Descriptor {
	return &schema.Descriptor{
		Kind:     schema.Object,
		Required: []string{"overallStatus", "summary", "stepResults"},
		Properties: map[string]*schema.Descriptor{
			"overallStatus": {
				Kind: schema.String,
				Enum: []string{string(StatusSuccess), string(StatusFailure)},
			},
			"summary": {Kind: schema.String},
			"stepResults": {
				Kind: schema.Array,
				Items: &schema.Descriptor{
					Kind:     schema.Object,
					Required: []string{"stepId", "status", "output", "reasoning"},
					Properties: map[string]*schema.Descriptor{
						"stepId": {Kind: schema.Integer},
						"status": {
							Kind: schema.String,
							Enum: []string{string(StatusSuccess), string(StatusFailure), string(StatusSkipped)},
						},
						"output":    {Kind: schema.String},
						"reasoning": {Kind: schema.String},
					},
				},
			},
		},
	}
}

// BuildTrace parses raw provider output into a Trace and enforces the
// cross-reference invariant: the step ids of the trace must equal the step
// ids of the blueprint, in the same declared order. Any extra, missing, or
// duplicated id is a hard ErrTraceMismatch, never a warning.
func BuildTrace(bp *blueprint.Blueprint, raw string) (*Trace, error) {
	var trace Trace
	if err := schema.Parse(raw, TraceSchema(), &trace); err != nil {
		return nil, err
	}

	if len(trace.StepResults) != len(bp.Steps) {
		return nil, fmt.Errorf("%w: blueprint has %d steps but trace reports %d",
			fault.ErrTraceMismatch, len(bp.Steps), len(trace.StepResults))
	}
	for i, result := range trace.StepResults {
		if want := bp.Steps[i].ID; result.StepID != want {
			return nil, fmt.Errorf("%w: position %d expects step id %d, trace has %d",
				fault.ErrTraceMismatch, i, want, result.StepID)
		}
	}

	// overallStatus is Failure exactly when a step failed. The model is asked
	// for this but not trusted; the computed value wins.
	computed := StatusSuccess
	for _, result := range trace.StepResults {
		if result.Status == StatusFailure {
			computed = StatusFailure
			break
		}
	}
	if trace.OverallStatus != computed {
		logging.SimulationWarn("BuildTrace: model reported overall %s, computed %s; using computed",
			trace.OverallStatus, computed)
		trace.OverallStatus = computed
	}

	logging.Simulation("BuildTrace: %d steps, overall %s", len(trace.StepResults), trace.OverallStatus)
	return &trace, nil
}
