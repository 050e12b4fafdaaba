package harness

// CaseResult is the observed outcome of one scenario case.
type CaseResult struct {
	Tape     string   `json:"tape"`
	Output   string   `json:"output"`
	State    uint64   `json:"state"`
	Accepted bool     `json:"accepted"`
	Steps    uint64   `json:"steps"`
	Error    string   `json:"error,omitempty"`
	Trace    []string `json:"trace"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every case matched its expectation and replay
	// reproduced every run.
	Pass bool `json:"pass"`

	// MachineHash identifies the loaded description. Empty when the
	// description was rejected.
	MachineHash string `json:"machine_hash,omitempty"`

	// LoadError is the error code of a rejected description.
	LoadError string `json:"load_error,omitempty"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
