package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/row"
)

// Scenario defines a contact scenario: a flow of writes and reads against a
// fresh provider, followed by assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Provider limits the transport for this run.
	Provider Limits `yaml:"provider,omitempty"`

	// Flow contains the steps, executed in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Limits restricts what a single transport call may carry.
type Limits struct {
	// MaxOps rejects calls with more operations as too large. Zero disables.
	MaxOps int `yaml:"max_ops,omitempty"`

	// MaxBytes is the provider payload limit. Zero keeps the default.
	MaxBytes int `yaml:"max_bytes,omitempty"`
}

// Step is one action of the flow.
type Step struct {
	// Action is one of create, update, delete, load or insert_row.
	Action string `yaml:"action"`

	// Contact is the binding name. A create step introduces it; later steps
	// resolve it to the created raw contact id.
	Contact string `yaml:"contact,omitempty"`

	// ID addresses a raw contact directly, for steps without a binding.
	ID int64 `yaml:"id,omitempty"`

	// Card is the contact written by create and update.
	Card *contact.Contact `yaml:"card,omitempty"`

	// Row holds the columns of an insert_row step. mimetype is required.
	Row map[string]any `yaml:"row,omitempty"`

	// ExpectError is the expected error kind. Empty means success.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of contact_equals, row_count, contact_count or call_count.
	Type string `yaml:"type"`

	// Contact is the binding name (contact_equals, row_count).
	Contact string `yaml:"contact,omitempty"`

	// MimeType restricts row_count to one row type.
	MimeType string `yaml:"mimetype,omitempty"`

	// Step is the flow index inspected by call_count.
	Step int `yaml:"step,omitempty"`

	// Count is the expected number (row_count, contact_count, call_count).
	Count int `yaml:"count,omitempty"`

	// Expect is the expected contact (contact_equals).
	Expect *contact.Contact `yaml:"expect,omitempty"`
}

// Flow actions.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionLoad      = "load"
	ActionInsertRow = "insert_row"
)

// Error kinds a step may expect.
const (
	ErrorNotFound     = "not_found"
	ErrorRowTooLarge  = "row_too_large"
	ErrorTransport    = "transport"
	ErrorUnresolved   = "unresolved_reference"
	ErrorUnclassified = "error"
)

// Assertion type constants.
const (
	AssertContactEquals = "contact_equals"
	AssertRowCount      = "row_count"
	AssertContactCount  = "contact_count"
	AssertCallCount     = "call_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields, so "assertion:" vs "assertions:" is caught.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Provider.MaxOps < 0 || s.Provider.MaxBytes < 0 {
		return fmt.Errorf("provider limits must be non-negative")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	bound := make(map[string]bool)
	for i, step := range s.Flow {
		if err := validateStep(i, step, bound); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Flow), bound); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks one flow step. bound collects the bindings introduced
// by create steps so far.
func validateStep(index int, step Step, bound map[string]bool) error {
	switch step.ExpectError {
	case "", ErrorNotFound, ErrorRowTooLarge, ErrorTransport, ErrorUnresolved, ErrorUnclassified:
	default:
		return fmt.Errorf("flow[%d]: unknown expect_error %q", index, step.ExpectError)
	}

	switch step.Action {
	case ActionCreate:
		if step.Contact == "" {
			return fmt.Errorf("flow[%d]: contact is required for create", index)
		}
		if bound[step.Contact] {
			return fmt.Errorf("flow[%d]: contact %q is already bound", index, step.Contact)
		}
		if step.Card == nil {
			return fmt.Errorf("flow[%d]: card is required for create", index)
		}
		bound[step.Contact] = true
		return nil
	case ActionUpdate:
		if step.Card == nil {
			return fmt.Errorf("flow[%d]: card is required for update", index)
		}
	case ActionDelete, ActionLoad:
	case ActionInsertRow:
		if step.Contact == "" {
			return fmt.Errorf("flow[%d]: contact is required for insert_row", index)
		}
		if mt, _ := step.Row[row.ColMimeType].(string); mt == "" {
			return fmt.Errorf("flow[%d]: row.mimetype is required for insert_row", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: action is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown action %q", index, step.Action)
	}

	switch {
	case step.Contact != "" && step.ID != 0:
		return fmt.Errorf("flow[%d]: contact and id are mutually exclusive", index)
	case step.Contact != "" && !bound[step.Contact]:
		return fmt.Errorf("flow[%d]: contact %q is not created by an earlier step", index, step.Contact)
	case step.Contact == "" && step.ID <= 0:
		return fmt.Errorf("flow[%d]: contact or a positive id is required for %s", index, step.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int, bound map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertContactEquals:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for contact_equals", index)
		}
		fallthrough
	case AssertRowCount:
		if !bound[a.Contact] {
			return fmt.Errorf("assertions[%d]: contact %q is not created by the flow", index, a.Contact)
		}
	case AssertContactCount:
	case AssertCallCount:
		if a.Step < 0 || a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step %d is outside the flow", index, a.Step)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
