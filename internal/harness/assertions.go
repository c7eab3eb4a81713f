package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/contactsync/internal/contacts"
	"github.com/roach88/contactsync/internal/provider"
	"github.com/roach88/contactsync/internal/row"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", event.Step, event.Action)
		if event.Contact != "" {
			fmt.Fprintf(&buf, " %s", event.Contact)
		}
		if event.ID != 0 {
			fmt.Fprintf(&buf, " id=%d", event.ID)
		}
		fmt.Fprintf(&buf, " calls=%d", len(event.Calls))
		if event.Error != "" {
			fmt.Fprintf(&buf, " error=%s", event.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// AssertionContext provides state access for assertions that read the
// provider.
type AssertionContext struct {
	Ctx      context.Context
	Syncer   *contacts.Syncer
	Provider *provider.Provider
	IDs      map[string]int64
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCallCount:
			err = assertCallCount(result.Trace, assertion)
		case AssertContactEquals, AssertRowCount, AssertContactCount:
			if actx == nil || actx.Provider == nil {
				err = fmt.Errorf("assertion[%d]: %s requires provider context", i, assertion.Type)
				break
			}
			switch assertion.Type {
			case AssertContactEquals:
				err = assertContactEquals(actx, result.Trace, assertion)
			case AssertRowCount:
				err = assertRowCount(actx, result.Trace, assertion)
			default:
				err = assertContactCount(actx, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertCallCount checks how many transport calls one step made.
func assertCallCount(trace []TraceEvent, assertion Assertion) error {
	if assertion.Step < 0 || assertion.Step >= len(trace) {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("step %d in trace", assertion.Step),
			Actual:   fmt.Sprintf("trace has %d steps", len(trace)),
			Trace:    trace,
		}
	}

	calls := len(trace[assertion.Step].Calls)
	if calls != assertion.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("step %d made %d calls", assertion.Step, assertion.Count),
			Actual:   fmt.Sprintf("%d calls", calls),
			Trace:    trace,
		}
	}
	return nil
}

// assertContactEquals loads the bound contact and compares it with expect.
func assertContactEquals(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	id, ok := actx.IDs[assertion.Contact]
	if !ok {
		return &AssertionError{
			Type:     AssertContactEquals,
			Expected: fmt.Sprintf("contact %q created", assertion.Contact),
			Actual:   "no id bound",
			Trace:    trace,
		}
	}

	got, err := actx.Syncer.Load(actx.Ctx, id)
	if err != nil {
		return &AssertionError{
			Type:     AssertContactEquals,
			Expected: fmt.Sprintf("contact %q loadable", assertion.Contact),
			Actual:   err.Error(),
			Trace:    trace,
		}
	}

	if !reflect.DeepEqual(got, assertion.Expect) {
		return &AssertionError{
			Type:     AssertContactEquals,
			Expected: fmt.Sprintf("%+v", *assertion.Expect),
			Actual:   fmt.Sprintf("%+v", *got),
			Trace:    trace,
		}
	}
	return nil
}

// assertRowCount counts the data rows of the bound contact, optionally
// restricted to one mimetype.
func assertRowCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	id, ok := actx.IDs[assertion.Contact]
	if !ok {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("contact %q created", assertion.Contact),
			Actual:   "no id bound",
			Trace:    trace,
		}
	}

	rows, err := actx.Provider.DataRows(actx.Ctx, id)
	if err != nil {
		return fmt.Errorf("row_count: %w", err)
	}

	count := 0
	for _, values := range rows {
		mimetype, _ := values.String(row.ColMimeType)
		if assertion.MimeType == "" || mimetype == assertion.MimeType {
			count++
		}
	}

	if count != assertion.Count {
		what := "data rows"
		if assertion.MimeType != "" {
			what = assertion.MimeType + " rows"
		}
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d %s for %q", assertion.Count, what, assertion.Contact),
			Actual:   fmt.Sprintf("%d", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertContactCount counts the live raw contacts.
func assertContactCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	ids, err := actx.Provider.RawContactIDs(actx.Ctx)
	if err != nil {
		return fmt.Errorf("contact_count: %w", err)
	}

	if len(ids) != assertion.Count {
		return &AssertionError{
			Type:     AssertContactCount,
			Expected: fmt.Sprintf("%d contacts", assertion.Count),
			Actual:   fmt.Sprintf("%d contacts %v", len(ids), ids),
			Trace:    trace,
		}
	}
	return nil
}
