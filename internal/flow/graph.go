package flow

// State returns the state with the given ID.
func (f *Flow) State(id string) (State, bool) {
	for _, s := range f.States {
		if s.ID == id {
			return s, true
		}
	}
	return State{}, false
}

// Outgoing returns all transitions leaving from, in declaration order.
func (f *Flow) Outgoing(from string) []Transition {
	var out []Transition
	for _, t := range f.Transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	return out
}

// Targets returns the destinations reachable from `from` on event `on`,
// in declaration order. The shared hint state fans out on "answered", so
// more than one target is normal there.
func (f *Flow) Targets(from string, on Event) []string {
	var out []string
	for _, t := range f.Transitions {
		if t.From == from && t.On == on {
			out = append(out, t.To)
		}
	}
	return out
}

// HasEdge reports whether any transition leaves from on event on.
func (f *Flow) HasEdge(from string, on Event) bool {
	for _, t := range f.Transitions {
		if t.From == from && t.On == on {
			return true
		}
	}
	return false
}

// IsTerminal reports whether id has no outgoing transitions.
func (f *Flow) IsTerminal(id string) bool {
	return len(f.Outgoing(id)) == 0
}

// Resolve picks the next state for (from, on). When several transitions
// match, origin breaks the tie: origin's good_answer successor wins first
// (resuming after a hint), then origin itself (the checkpoint remediation
// loop), then the first matching transition.
func (f *Flow) Resolve(from string, on Event, origin string) (string, bool) {
	candidates := f.Targets(from, on)
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}

	if origin != "" {
		for _, next := range f.Targets(origin, EventGoodAnswer) {
			for _, c := range candidates {
				if c == next {
					return c, true
				}
			}
		}
		for _, c := range candidates {
			if c == origin {
				return c, true
			}
		}
	}
	return candidates[0], true
}

// Progress returns the 1-based position of id among the flow's main-line
// states and how many there are. The hint is a detour and has no position.
func (f *Flow) Progress(id string) (pos, total int, ok bool) {
	for _, s := range f.States {
		if s.Intent == IntentGiveHint {
			continue
		}
		total++
		if s.ID == id {
			pos, ok = total, true
		}
	}
	return pos, total, ok
}
