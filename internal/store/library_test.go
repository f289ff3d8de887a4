package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge/internal/blueprint"
	"flowforge/internal/simulation"
)

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func testBlueprint() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		Platform:    blueprint.PlatformN8N,
		Explanation: "syncs new leads to the CRM",
		Steps: []blueprint.Step{
			{ID: 1, Title: "New lead", Description: "form submission", Kind: blueprint.StepTrigger},
			{ID: 2, Title: "Create contact", Description: "CRM insert", Kind: blueprint.StepAction},
		},
	}
}

func TestSaveAndGetBlueprint(t *testing.T) {
	lib := testLibrary(t)

	id, err := lib.SaveBlueprint("sync leads", testBlueprint())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := lib.GetBlueprint(id)
	require.NoError(t, err)
	assert.Equal(t, "sync leads", rec.Goal)
	assert.Equal(t, blueprint.PlatformN8N, rec.Blueprint.Platform)
	assert.Len(t, rec.Blueprint.Steps, 2)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGetBlueprint_NotFound(t *testing.T) {
	lib := testLibrary(t)
	_, err := lib.GetBlueprint("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListBlueprints(t *testing.T) {
	lib := testLibrary(t)

	records, err := lib.ListBlueprints()
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = lib.SaveBlueprint("first", testBlueprint())
	require.NoError(t, err)
	_, err = lib.SaveBlueprint("second", testBlueprint())
	require.NoError(t, err)

	records, err = lib.ListBlueprints()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDeleteBlueprint(t *testing.T) {
	lib := testLibrary(t)

	id, err := lib.SaveBlueprint("doomed", testBlueprint())
	require.NoError(t, err)
	require.NoError(t, lib.DeleteBlueprint(id))

	_, err = lib.GetBlueprint(id)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = lib.DeleteBlueprint(id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveAndListTraces(t *testing.T) {
	lib := testLibrary(t)

	bpID, err := lib.SaveBlueprint("traced", testBlueprint())
	require.NoError(t, err)

	trace := &simulation.Trace{
		OverallStatus: simulation.StatusSuccess,
		Summary:       "both steps ran",
		StepResults: []simulation.StepResult{
			{StepID: 1, Status: simulation.StatusSuccess, Output: "lead captured", Reasoning: "payload matched"},
			{StepID: 2, Status: simulation.StatusSuccess, Output: "contact created", Reasoning: "fields mapped"},
		},
	}
	traceID, err := lib.SaveTrace(bpID, `{"lead":"ada"}`, trace)
	require.NoError(t, err)
	require.NotEmpty(t, traceID)

	records, err := lib.ListTraces(bpID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, bpID, records[0].BlueprintID)
	assert.Equal(t, `{"lead":"ada"}`, records[0].Payload)
	assert.Equal(t, simulation.StatusSuccess, records[0].Trace.OverallStatus)
	assert.Len(t, records[0].Trace.StepResults, 2)
}
