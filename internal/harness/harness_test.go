package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SuccessfulScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "basic",
		Description: "create, append, get",
		Steps: []Step{
			{Op: OpCreate, App: "shop", User: "alice", Session: "s1"},
			{Op: OpAppend, App: "shop", User: "alice", Session: "s1", Author: "agent",
				Delta: map[string]any{"step": "checkout"}},
			{Op: OpGet, App: "shop", User: "alice", Session: "s1"},
		},
		Assertions: []Assertion{
			{Type: AssertSessionState, App: "shop", User: "alice", Session: "s1",
				Expect: map[string]any{"step": "checkout"}},
			{Type: AssertEventCount, App: "shop", User: "alice", Session: "s1", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, OpCreate, result.Trace[0]["op"])
	assert.Equal(t, "ev-000001", result.Trace[1]["event"])
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_miss",
		Description: "get of a missing session is declared",
		Steps: []Step{
			{Op: OpGet, App: "shop", User: "alice", Session: "ghost", ExpectError: "not_found"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "not_found", result.Trace[0]["error"])
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_miss",
		Description: "get of a missing session without declaration",
		Steps: []Step{
			{Op: OpGet, App: "shop", User: "alice", Session: "ghost"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrongly_pessimistic",
		Description: "declared failure does not happen",
		Steps: []Step{
			{Op: OpCreate, App: "shop", User: "alice", Session: "s1"},
			{Op: OpGet, App: "shop", User: "alice", Session: "s1", ExpectError: "not_found"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "but step succeeded")
}

func TestRun_FailedAssertionFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_state",
		Description: "assertion expects a value never written",
		Steps: []Step{
			{Op: OpCreate, App: "shop", User: "alice", Session: "s1"},
		},
		Assertions: []Assertion{
			{Type: AssertSessionState, App: "shop", User: "alice", Session: "s1",
				Expect: map[string]any{"missing": "value"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
}

func TestRun_PartialAppendLeavesNoTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "partial",
		Description: "partial events are not persisted",
		Steps: []Step{
			{Op: OpCreate, App: "shop", User: "alice", Session: "s1"},
			{Op: OpAppend, App: "shop", User: "alice", Session: "s1", Author: "agent",
				Partial: true, Delta: map[string]any{"draft": "x"}},
		},
		Assertions: []Assertion{
			{Type: AssertEventCount, App: "shop", User: "alice", Session: "s1", Count: 0},
			{Type: AssertSessionState, App: "shop", User: "alice", Session: "s1",
				Absent: []string{"draft"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, true, result.Trace[1]["partial"])
}

func TestRun_CursorChaining(t *testing.T) {
	steps := []Step{{Op: OpCreate, App: "shop", User: "alice", Session: "s1"}}
	for i := 0; i < 3; i++ {
		steps = append(steps, Step{Op: OpAppend, App: "shop", User: "alice", Session: "s1", Author: "agent"})
	}
	steps = append(steps,
		Step{Op: OpEvents, App: "shop", User: "alice", Session: "s1", PageSize: 2},
		Step{Op: OpEvents, App: "shop", User: "alice", Session: "s1", PageSize: 2, Cursor: "previous"},
	)

	result, err := Run(&Scenario{Name: "cursor", Description: "paging", Steps: steps})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	first := result.Trace[4]
	assert.Equal(t, []any{"ev-000001", "ev-000002"}, first["events"])
	assert.Equal(t, true, first["more"])

	second := result.Trace[5]
	assert.Equal(t, []any{"ev-000003"}, second["events"])
	assert.NotContains(t, second, "more")
}
