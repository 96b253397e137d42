package safety

import (
	"regexp"
	"strings"
)

// Kind identifies a class of violation.
type Kind string

const (
	KindDirectAnswer      Kind = "direct-answer"
	KindComplexity        Kind = "complexity"
	KindOffTopic          Kind = "off-topic"
	KindJudgmental        Kind = "judgmental"
	KindMultipleQuestions Kind = "multiple-questions"
	KindTooLong           Kind = "too-long"
)

// Length ceilings for a single tutor turn.
const (
	MaxLines = 6
	MaxWords = 50
)

// Messages are the human-readable violation strings reported in a Result.
var Messages = map[Kind]string{
	KindDirectAnswer:      "reveals the answer or solution steps instead of guiding the student",
	KindComplexity:        "uses vocabulary above the student's level",
	KindOffTopic:          "drifts away from math",
	KindJudgmental:        "uses judgmental or discouraging language",
	KindMultipleQuestions: "asks more than one question at a time",
	KindTooLong:           "is too long for a single tutoring turn",
}

// Direct-answer patterns that also select a rewrite.
var (
	answerIsRe = regexp.MustCompile(`(?i)\bthe answer is\b`)
	justOpRe   = regexp.MustCompile(`(?i)\b(?:just|simply)\s+(?:add|subtract|multiply|divide)`)
	formulaRe  = regexp.MustCompile(`(?i)\bthe formula is\b`)
)

// RuleTable holds the pattern batteries, keyed by the violation they report.
// Length and question-count checks are structural and have no patterns.
var RuleTable = map[Kind][]*regexp.Regexp{
	KindDirectAnswer: {
		answerIsRe,
		regexp.MustCompile(`(?i)\bequals\s+-?\d`),
		regexp.MustCompile(`=\s*-?\d`),
		justOpRe,
		formulaRe,
		regexp.MustCompile(`(?is)\bfirst\b.*\bthen\b.*\bfinally\b`),
		regexp.MustCompile(`(?is)\bstep\s*1\b.*\bstep\s*2\b.*\bstep\s*3\b`),
	},
	KindComplexity: termPatterns(
		"algorithm", "coefficient", "polynomial", "quadratic", "derivative",
		"integral", "calculus", "logarithm", "theorem", "asymptote",
		"trigonometry", "matrix",
	),
	KindOffTopic: termPatterns(
		"physics", "chemistry", "biology", "history", "geography", "art",
		"music", "literature", "politics", "religion", "sports",
	),
	KindJudgmental: termPatterns(
		"that's wrong", "that is wrong", "you're wrong", "obviously", "clearly",
		"simple", "easy", "just", "stupid", "silly", "bad", "dumb", "lazy",
	),
}

// rewrites maps direct-answer sub-patterns to Socratic questions, in
// priority order. Rewrites never repeat numbers from the original.
var rewrites = []struct {
	re   *regexp.Regexp
	text string
}{
	{answerIsRe, "What do you think the answer might be, and how could you check it?"},
	{justOpRe, "What operation do you think would help us here?"},
	{formulaRe, "What formula might help us solve this?"},
}

const genericRewrite = "What do you notice about this problem so far?"

// rewriteFor returns the Socratic replacement for a message that leaked
// an answer.
func rewriteFor(message string) string {
	for _, r := range rewrites {
		if r.re.MatchString(message) {
			return r.text
		}
	}
	return genericRewrite
}

// termPatterns compiles case-insensitive substring matchers, so "just"
// also fires inside "justify" and "art" inside "start". Apostrophes match
// both straight and curly quotes.
func termPatterns(terms ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		quoted := strings.ReplaceAll(regexp.QuoteMeta(t), "'", `['’]`)
		out = append(out, regexp.MustCompile(`(?i)`+quoted))
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
