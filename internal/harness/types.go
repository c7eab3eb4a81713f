package harness

// Call statuses recorded in the trace.
const (
	CallOK       = "ok"
	CallTooLarge = "too_large"
	CallFailed   = "failed"
)

// CallTrace is one transport call made while executing a step.
type CallTrace struct {
	Ops    int    `json:"ops"`
	Status string `json:"status"`
}

// TraceEvent records the execution of one flow step.
type TraceEvent struct {
	Step    int         `json:"step"`
	Action  string      `json:"action"`
	Contact string      `json:"contact,omitempty"`
	ID      int64       `json:"id,omitempty"`
	Calls   []CallTrace `json:"calls,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step produced the expected
	// outcome and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// IDs maps contact bindings to the raw contact ids they were created as.
	IDs map[string]int64 `json:"ids,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		IDs:    make(map[string]int64),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
