package harness

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semmeta/internal/ir"
)

func intPtr(n int) *int { return &n }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "One tagged item",
		Steps: []Step{
			{Add: &ir.Item{Name: "Door1", Type: "Contact", Tags: []string{"Door"}}},
		},
		Assertions: []Assertion{
			{Type: AssertRecord, Item: "Door1", Value: "Equipment_Door"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, DefaultSource, result.Trace[0].Source)
	assert.Empty(t, result.Logs)
	require.Len(t, result.Records, 1)
}

func TestRun_CustomSource(t *testing.T) {
	scenario := &Scenario{
		Name:        "source",
		Description: "Source is passed to listeners",
		Source:      "bench",
		Steps: []Step{
			{Add: &ir.Item{Name: "Door1", Tags: []string{"Door"}}},
		},
		Assertions: []Assertion{{Type: AssertNoLogs}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, "bench", result.Trace[0].Source)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Expects the wrong value",
		Steps: []Step{
			{Add: &ir.Item{Name: "Door1", Tags: []string{"Door"}}},
		},
		Assertions: []Assertion{
			{Type: AssertRecord, Item: "Door1", Value: "Equipment_Window"},
			{Type: AssertChangeCount, Count: intPtr(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Door1 value Equipment_Window")
}

func TestRun_StepErrors(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{"update missing", Step{Update: &ir.Item{Name: "Ghost"}}, `item "Ghost" does not exist`},
		{"remove missing", Step{Remove: "Ghost"}, `item "Ghost" does not exist`},
		{"register duplicate", Step{Register: &ir.TagSpec{ID: "Kitchen", Parent: "Room"}}, "duplicate tag id"},
		{"empty step", Step{}, "exactly one step type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        tt.name,
				Description: "step error",
				Steps:       []Step{tt.step},
				Assertions:  []Assertion{{Type: AssertNoLogs}},
			}
			_, err := Run(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_CapturesCycleLog(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/direct_cycle.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Logs, 1)
	assert.Equal(t, slog.LevelError, result.Logs[0].Level)
	assert.Equal(t,
		"Recursive group membership found: group1 is a member of group2, but it is also one of its ancestors.",
		result.Logs[0].Message)
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/diamond_group.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalTrace(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.Records, second.Records)
}
