package harness

// TraceEvent is one step in a run's trace: a trial, a verification, or a
// fairness judgement. Traces are what golden files snapshot, so events carry
// only deterministic fields; wall-clock durations and ratios live on
// FlowResult and FairnessSample instead.
type TraceEvent struct {
	Type       string `json:"type"` // "trial", "verify", or "fairness"
	Scenario   string `json:"scenario,omitempty"`
	Port       int    `json:"port,omitempty"`
	Order      string `json:"order,omitempty"`
	Repetition int    `json:"repetition,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Pass       bool   `json:"pass"`
	Detail     string `json:"detail,omitempty"`
	Seq        int64  `json:"seq"`
}

// Trace event type names.
const (
	EventTrial    = "trial"
	EventVerify   = "verify"
	EventFairness = "fairness"
)

// Result is the outcome of running one scenario through one check kind.
type Result struct {
	// Pass indicates overall success: every assertion in the run held.
	Pass bool `json:"pass"`

	// Trace records what the run did, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds failure messages with measured values alongside the
	// expected bounds. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure message and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrialTrace records a completed trial.
func (r *Result) AddTrialTrace(scenario string, port int, order StartOrder, repetition int, bytes int64, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventTrial,
		Scenario:   scenario,
		Port:       port,
		Order:      order.String(),
		Repetition: repetition,
		Bytes:      bytes,
		Pass:       true,
		Seq:        seq,
	})
}

// AddVerifyTrace records a byte-exactness comparison.
func (r *Result) AddVerifyTrace(scenario string, report *VerifyReport, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     EventVerify,
		Scenario: scenario,
		Bytes:    report.ReceivedBytes,
		Pass:     report.Pass,
		Detail:   report.Describe(),
		Seq:      seq,
	})
}

// AddFairnessTrace records one repetition's convergence judgement.
func (r *Result) AddFairnessTrace(scenario string, repetition int, pass bool, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventFairness,
		Scenario:   scenario,
		Repetition: repetition,
		Pass:       pass,
		Seq:        seq,
	})
}
