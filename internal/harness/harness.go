package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/contactsync/internal/contacts"
	"github.com/roach88/contactsync/internal/fields"
	"github.com/roach88/contactsync/internal/provider"
	"github.com/roach88/contactsync/internal/row"
	"github.com/roach88/contactsync/internal/testutil"
	"github.com/roach88/contactsync/internal/txn"
)

// Harness is the scenario execution engine.
// It owns one provider, the recording transport in front of it and a
// syncer with deterministic source ids.
type Harness struct {
	provider *provider.Provider
	recorder *recorder
	syncer   *contacts.Syncer
	ids      map[string]int64
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// A step whose outcome differs from its expect_error, or a failed
// assertion, marks the result as failed; Run itself only returns an error
// when the harness cannot execute the scenario.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := []provider.Option{provider.WithLogger(logger)}
	if scenario.Provider.MaxBytes > 0 {
		opts = append(opts, provider.WithMaxPayloadBytes(scenario.Provider.MaxBytes))
	}
	p, err := provider.Open(":memory:", opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory provider: %w", err)
	}
	defer p.Close()

	rec := &recorder{Provider: p, maxOps: scenario.Provider.MaxOps}
	syncer := contacts.New(rec, fields.Default(fields.WithLogger(logger)),
		contacts.WithLogger(logger),
		contacts.WithUIDGenerator(testutil.FixedUIDs()))

	h := &Harness{
		provider: p,
		recorder: rec,
		syncer:   syncer,
		ids:      make(map[string]int64),
		logger:   logger,
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute flow: %w", err)
		}
	}
	for name, id := range h.ids {
		result.IDs[name] = id
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Syncer:   h.syncer,
		Provider: p,
		IDs:      h.ids,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one flow step and records its trace event.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	event := TraceEvent{Step: index, Action: step.Action, Contact: step.Contact}

	id := step.ID
	if step.Contact != "" && step.Action != ActionCreate {
		bound, ok := h.ids[step.Contact]
		if !ok {
			return fmt.Errorf("flow[%d]: contact %q is not bound", index, step.Contact)
		}
		id = bound
	}

	var err error
	switch step.Action {
	case ActionCreate:
		id, err = h.syncer.Create(ctx, step.Card)
		if err == nil {
			h.ids[step.Contact] = id
		}
	case ActionUpdate:
		err = h.syncer.Update(ctx, id, step.Card)
	case ActionDelete:
		err = h.syncer.Delete(ctx, id)
	case ActionLoad:
		_, err = h.syncer.Load(ctx, id)
	case ActionInsertRow:
		if err := h.insertRow(ctx, id, step.Row); err != nil {
			return fmt.Errorf("flow[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("flow[%d]: unknown action %q", index, step.Action)
	}

	event.ID = id
	event.Calls = h.recorder.take()
	if err != nil {
		event.Error = errorKind(err)
	}
	result.AddTrace(event)

	if event.Error != step.ExpectError {
		msg := fmt.Sprintf("flow[%d] %s: expected error %q, got %q", index, step.Action, step.ExpectError, event.Error)
		if err != nil {
			msg += ": " + err.Error()
		}
		result.AddError(msg)
	}

	h.logger.Info("flow step completed",
		"step", index,
		"action", step.Action,
		"id", id,
		"calls", len(event.Calls))
	return nil
}

// insertRow writes a data row for id directly into the provider, bypassing
// the syncer and the recorder.
func (h *Harness) insertRow(ctx context.Context, id int64, columns map[string]any) error {
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	op := row.NewInsert(row.TableData).With(row.ColRawContactID, row.Int(id))
	for _, k := range keys {
		v, err := row.FromAny(columns[k])
		if err != nil {
			return fmt.Errorf("insert_row column %q: %w", k, err)
		}
		op = op.With(k, v)
	}

	if _, err := h.provider.Apply(ctx, []row.Operation{op}); err != nil {
		return fmt.Errorf("insert_row: %w", err)
	}
	return nil
}

// errorKind classifies a step error into one of the expect_error kinds.
func errorKind(err error) string {
	switch {
	case errors.Is(err, contacts.ErrNotFound):
		return ErrorNotFound
	case txn.IsRowTooLargeError(err):
		return ErrorRowTooLarge
	case txn.IsUnresolvedReferenceError(err):
		return ErrorUnresolved
	case txn.IsTransportError(err):
		return ErrorTransport
	default:
		return ErrorUnclassified
	}
}

// recorder is the transport the syncer writes through. It records every
// call and rejects calls with more than maxOps operations before they reach
// the provider.
type recorder struct {
	*provider.Provider
	maxOps int

	mu    sync.Mutex
	calls []CallTrace
}

// Apply implements txn.Transport.
func (r *recorder) Apply(ctx context.Context, ops []row.Operation) ([]row.Result, error) {
	if r.maxOps > 0 && len(ops) > r.maxOps {
		r.record(len(ops), CallTooLarge)
		return nil, fmt.Errorf("%d operations, limit %d: %w", len(ops), r.maxOps, txn.ErrPayloadTooLarge)
	}

	results, err := r.Provider.Apply(ctx, ops)
	switch {
	case err == nil:
		r.record(len(ops), CallOK)
	case errors.Is(err, txn.ErrPayloadTooLarge):
		r.record(len(ops), CallTooLarge)
	default:
		r.record(len(ops), CallFailed)
	}
	return results, err
}

func (r *recorder) record(ops int, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, CallTrace{Ops: ops, Status: status})
}

// take returns the calls recorded since the previous take.
func (r *recorder) take() []CallTrace {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}
