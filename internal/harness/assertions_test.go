package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactsync/internal/contact"
)

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCallCount,
		Expected: "step 0 made 1 calls",
		Actual:   "3 calls",
		Trace: []TraceEvent{
			{Step: 0, Action: ActionCreate, Contact: "ada", ID: 1, Calls: []CallTrace{{Ops: 4, Status: CallTooLarge}, {Ops: 2, Status: CallOK}, {Ops: 2, Status: CallOK}}},
			{Step: 1, Action: ActionDelete, ID: 5, Calls: []CallTrace{{Ops: 1, Status: CallOK}}, Error: ErrorNotFound},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: call_count")
	assert.Contains(t, msg, "Expected: step 0 made 1 calls")
	assert.Contains(t, msg, "Actual: 3 calls")
	assert.Contains(t, msg, "[0] create ada id=1 calls=3")
	assert.Contains(t, msg, "[1] delete id=5 calls=1 error=not_found")
}

func TestAssertCallCount(t *testing.T) {
	trace := []TraceEvent{
		{Step: 0, Action: ActionCreate, Calls: []CallTrace{{Ops: 2, Status: CallOK}}},
	}

	assert.NoError(t, assertCallCount(trace, Assertion{Type: AssertCallCount, Step: 0, Count: 1}))

	err := assertCallCount(trace, Assertion{Type: AssertCallCount, Step: 0, Count: 2})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "1 calls", ae.Actual)

	err = assertCallCount(trace, Assertion{Type: AssertCallCount, Step: 4})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "trace has 1 steps", ae.Actual)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing_assertions",
		Description: "Every assertion is wrong",
		Flow: []Step{
			{Action: ActionCreate, Contact: "ada", Card: &contact.Contact{
				Name:   contact.Name{Given: "Ada"},
				Phones: []contact.LabeledValue{{Value: "555-0100", Type: "mobile"}},
			}},
		},
		Assertions: []Assertion{
			{Type: AssertContactCount, Count: 2},
			{Type: AssertRowCount, Contact: "ada", MimeType: "vnd.android.cursor.item/phone_v2", Count: 3},
			{Type: AssertContactEquals, Contact: "ada", Expect: &contact.Contact{UID: "uid-1", Name: contact.Name{Given: "Grace"}}},
			{Type: AssertCallCount, Step: 0, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Expected: 2 contacts")
	assert.Contains(t, result.Errors[1], "3 vnd.android.cursor.item/phone_v2 rows")
	assert.Contains(t, result.Errors[1], "Actual: 1")
	assert.Contains(t, result.Errors[2], "Assertion failed: contact_equals")
	assert.Contains(t, result.Errors[2], "Grace")
	assert.Contains(t, result.Errors[3], "Assertion failed: call_count")
}

func TestEvaluateAssertions_RequiresProvider(t *testing.T) {
	result := NewResult()
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertContactCount, Count: 0},
		{Type: AssertCallCount, Step: 0},
		{Type: "bogus"},
	}, &AssertionContext{Ctx: context.Background()})

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "contact_count requires provider context")
	assert.Contains(t, errs[1], "trace has 0 steps")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}
