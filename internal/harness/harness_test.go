package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactsync/internal/contact"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Flow))
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Flow: []Step{
			{Action: ActionCreate, Contact: "ada", Card: &contact.Contact{Nickname: "Ada"}},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, map[string]int64{"ada": 1}, result.IDs)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, TraceEvent{
		Step:    0,
		Action:  ActionCreate,
		Contact: "ada",
		ID:      1,
		Calls:   []CallTrace{{Ops: 2, Status: CallOK}},
	}, result.Trace[0])
}

func TestRun_IsolatedDatabases(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "Each run starts from an empty provider",
		Flow: []Step{
			{Action: ActionCreate, Contact: "ada", Card: &contact.Contact{Note: "hello"}},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 1},
		},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d: %v", i, result.Errors)
		assert.Equal(t, int64(1), result.IDs["ada"])
	}
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_error",
		Description: "Deleting a missing contact without expecting it fails the run",
		Flow: []Step{
			{Action: ActionDelete, ID: 7},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected error "", got "not_found"`)
	assert.Equal(t, ErrorNotFound, result.Trace[0].Error)
}

func TestRun_MissingExpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_expected_error",
		Description: "A step that succeeds while an error is expected fails the run",
		Flow: []Step{
			{Action: ActionCreate, Contact: "ada", Card: &contact.Contact{Note: "fits"}, ExpectError: ErrorRowTooLarge},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected error "row_too_large", got ""`)
}

func TestRun_OpLimitOfOneStillCommits(t *testing.T) {
	scenario := &Scenario{
		Name:        "one_op_per_call",
		Description: "With one operation per call every row travels alone",
		Provider:    Limits{MaxOps: 1},
		Flow: []Step{
			{Action: ActionCreate, Contact: "ada", Card: &contact.Contact{
				Nickname: "Ada",
				Note:     "Analyst",
			}},
		},
		Assertions: []Assertion{
			{Type: AssertRowCount, Contact: "ada", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// 3 ops: [0,3) rejected, [0,1) ok, [1,3) rejected, [1,2) ok, [2,3) ok.
	assert.Equal(t, []CallTrace{
		{Ops: 3, Status: CallTooLarge},
		{Ops: 1, Status: CallOK},
		{Ops: 2, Status: CallTooLarge},
		{Ops: 1, Status: CallOK},
		{Ops: 1, Status: CallOK},
	}, result.Trace[0].Calls)
}

func TestErrorKind(t *testing.T) {
	scenario := &Scenario{
		Name:        "kinds",
		Description: "Error kinds are classified",
		Flow: []Step{
			{Action: ActionLoad, ID: 3, ExpectError: ErrorNotFound},
			{Action: ActionUpdate, ID: 3, Card: &contact.Contact{}, ExpectError: ErrorNotFound},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	for _, event := range result.Trace {
		assert.Equal(t, ErrorNotFound, event.Error)
		assert.Empty(t, event.Calls)
	}
}
