package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with: go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "golden files are named after the scenario")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalTrace(t *testing.T) {
	trace := []TraceEvent{
		{Step: 0, Action: ActionCreate, Contact: "ada", ID: 1, Calls: []CallTrace{{Ops: 2, Status: CallOK}}},
		{Step: 1, Action: ActionDelete, ID: 9, Calls: []CallTrace{{Ops: 1, Status: CallOK}}, Error: ErrorNotFound},
	}

	got, err := MarshalTrace(trace)
	require.NoError(t, err)

	want := `{"step":0,"action":"create","contact":"ada","id":1,"calls":[{"ops":2,"status":"ok"}]}` + "\n" +
		`{"step":1,"action":"delete","id":9,"calls":[{"ops":1,"status":"ok"}],"error":"not_found"}` + "\n"
	assert.Equal(t, want, string(got))
}

func TestMarshalTrace_Empty(t *testing.T) {
	got, err := MarshalTrace(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/split_under_op_limit.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(first.Trace)
	require.NoError(t, err)
	b, err := MarshalTrace(second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
