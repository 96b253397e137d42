package safety

import "strings"

// Rule inspects a candidate tutor message. Implementations must be
// stateless and safe for concurrent use.
type Rule interface {
	// Kind returns the violation class this rule reports.
	Kind() Kind

	// Check returns nil if the message passes, or the violation found.
	// intent is the flow intent the message was written for.
	Check(message, intent string) *Violation
}

// Violation describes one failed rule.
type Violation struct {
	Kind    Kind
	Message string

	// Rewrite is a safe replacement for the whole message, if the rule
	// can offer one.
	Rewrite string
}

// Result is the outcome of running a Filter over one message.
type Result struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`

	// FilteredText is set only when a direct-answer rewrite fired.
	FilteredText string `json:"filteredText,omitempty"`

	// Kinds parallels Violations.
	Kinds []Kind `json:"kinds,omitempty"`
}

// HasRewrite reports whether the caller should show FilteredText instead of
// the original message.
func (r Result) HasRewrite() bool { return r.FilteredText != "" }

// Filter runs an ordered battery of rules. A Filter is immutable and safe
// for concurrent use.
type Filter struct {
	rules []Rule
}

// NewFilter creates a filter with the given rules. With no rules it uses
// DefaultRules.
func NewFilter(rules ...Rule) *Filter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Filter{rules: rules}
}

// DefaultRules returns the standard battery in reporting order.
func DefaultRules() []Rule {
	return []Rule{
		&DirectAnswerRule{},
		&PatternRule{kind: KindComplexity},
		&PatternRule{kind: KindOffTopic},
		&PatternRule{kind: KindJudgmental},
		&QuestionCountRule{},
		&LengthRule{},
	}
}

// Check runs every rule unconditionally and collects all violations in
// rule order. The first rewrite offered wins.
func (f *Filter) Check(message, intent string) Result {
	res := Result{Violations: []string{}}
	for _, r := range f.rules {
		v := r.Check(message, intent)
		if v == nil {
			continue
		}
		res.Violations = append(res.Violations, v.Message)
		res.Kinds = append(res.Kinds, v.Kind)
		if v.Rewrite != "" && res.FilteredText == "" {
			res.FilteredText = v.Rewrite
		}
	}
	res.Passed = len(res.Violations) == 0
	return res
}

var defaultFilter = NewFilter()

// Check runs the default battery over message.
func Check(message, intent string) Result {
	return defaultFilter.Check(message, intent)
}

// PatternRule flags messages matching any pattern in RuleTable[kind].
type PatternRule struct {
	kind Kind
}

// NewPatternRule returns a rule backed by the RuleTable battery for kind.
func NewPatternRule(kind Kind) *PatternRule { return &PatternRule{kind: kind} }

func (r *PatternRule) Kind() Kind { return r.kind }

func (r *PatternRule) Check(message, _ string) *Violation {
	if !matchesAny(RuleTable[r.kind], message) {
		return nil
	}
	return &Violation{Kind: r.kind, Message: Messages[r.kind]}
}

// DirectAnswerRule flags messages that hand the student the solution and
// offers a Socratic rewrite.
type DirectAnswerRule struct{}

func (r *DirectAnswerRule) Kind() Kind { return KindDirectAnswer }

func (r *DirectAnswerRule) Check(message, _ string) *Violation {
	if !matchesAny(RuleTable[KindDirectAnswer], message) {
		return nil
	}
	return &Violation{
		Kind:    KindDirectAnswer,
		Message: Messages[KindDirectAnswer],
		Rewrite: rewriteFor(message),
	}
}

// QuestionCountRule enforces one question per turn.
type QuestionCountRule struct{}

func (r *QuestionCountRule) Kind() Kind { return KindMultipleQuestions }

func (r *QuestionCountRule) Check(message, _ string) *Violation {
	if strings.Count(message, "?") <= 1 {
		return nil
	}
	return &Violation{Kind: KindMultipleQuestions, Message: Messages[KindMultipleQuestions]}
}

// LengthRule enforces the MaxLines and MaxWords ceilings.
type LengthRule struct{}

func (r *LengthRule) Kind() Kind { return KindTooLong }

func (r *LengthRule) Check(message, _ string) *Violation {
	lines := strings.Count(message, "\n") + 1
	if lines <= MaxLines && len(strings.Fields(message)) <= MaxWords {
		return nil
	}
	return &Violation{Kind: KindTooLong, Message: Messages[KindTooLong]}
}
