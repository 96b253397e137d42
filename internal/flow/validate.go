package flow

import (
	"fmt"
	"strings"
)

// ValidationError lists every invariant a flow violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Validate checks the structural invariants of f. It returns a
// *ValidationError describing all problems found, or nil if f is valid.
func Validate(f *Flow) error {
	if f == nil {
		return &ValidationError{Problems: []string{"flow is nil"}}
	}
	var errs []string

	ids := make(map[string]bool, len(f.States))
	for _, s := range f.States {
		if s.ID == "" {
			errs = append(errs, "state with empty ID")
			continue
		}
		if ids[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate state ID: %q", s.ID))
		}
		ids[s.ID] = true
		if !s.Intent.Valid() {
			errs = append(errs, fmt.Sprintf("state %q has unknown intent %q", s.ID, s.Intent))
		}
	}

	// Dangling references
	for i, t := range f.Transitions {
		if !ids[t.From] {
			errs = append(errs, fmt.Sprintf("transition %d references nonexistent source %q", i, t.From))
		}
		if !ids[t.To] {
			errs = append(errs, fmt.Sprintf("transition %d references nonexistent target %q", i, t.To))
		}
		if !t.On.Valid() {
			errs = append(errs, fmt.Sprintf("transition %d (%s -> %s) has unknown event %q", i, t.From, t.To, t.On))
		}
	}

	if !ids[StartID] {
		errs = append(errs, fmt.Sprintf("missing %q state", StartID))
	} else if len(f.Outgoing(StartID)) == 0 {
		errs = append(errs, fmt.Sprintf("%q state has no outgoing transitions", StartID))
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}
