package harness

import "github.com/roach88/fetchqb/internal/session"

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Emitted holds every change delivered to the callback, in order.
	Emitted []session.Change `json:"emitted"`

	// XML is the final serialization of the session.
	XML string `json:"xml"`

	// Fields is the final field name list.
	Fields []string `json:"fields"`

	// Entity is the final entity name.
	Entity string `json:"entity"`

	// Conditions counts the condition leaves of the final tree.
	Conditions int `json:"conditions"`

	// LoadError is the reason the source failed to decode, if it did.
	LoadError string `json:"load_error,omitempty"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Emitted: []session.Change{},
		Fields:  []string{},
		Errors:  []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// LastXML returns the most recently emitted document, or "" if nothing
// was emitted.
func (r *Result) LastXML() string {
	if len(r.Emitted) == 0 {
		return ""
	}
	return r.Emitted[len(r.Emitted)-1].XML
}
