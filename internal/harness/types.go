package harness

import "github.com/roach88/gremlin/internal/flow"

// Artifact is one generated file.
type Artifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion holds.
	Pass bool `json:"pass"`

	// Spec is the loaded spec's name and SpecHash its archive address.
	Spec     string `json:"spec"`
	SpecHash string `json:"specHash"`

	Target string `json:"target"`

	// Flows lists extracted flow names in rank order.
	Flows []string `json:"flows"`

	// Tests lists generated fuzz test names (fuzz target only).
	Tests []string `json:"tests,omitempty"`

	Verdicts []flow.Verdict `json:"verdicts"`

	// Artifacts in generation order.
	Artifacts []Artifact `json:"artifacts"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Flows:     []string{},
		Verdicts:  []flow.Verdict{},
		Artifacts: []Artifact{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Artifact returns the artifact at path.
func (r *Result) Artifact(path string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Path == path {
			return a, true
		}
	}
	return Artifact{}, false
}

// Paths lists artifact paths in generation order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		paths[i] = a.Path
	}
	return paths
}
