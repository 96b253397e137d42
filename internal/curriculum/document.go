package curriculum

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Scalar is a loosely typed scalar field. Authored documents write grades
// and answers as either numbers or strings ("4" and 4 are the same grade).
type Scalar string

// UnmarshalYAML accepts any scalar node.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar, got %s", value.Line, kindName(value.Kind))
	}
	if value.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = Scalar(strings.TrimSpace(value.Value))
	return nil
}

func (s Scalar) String() string { return string(s) }

// Path locates a subtopic in the curriculum tree.
type Path struct {
	Grade    Scalar `yaml:"grade" json:"grade"`
	Subject  Scalar `yaml:"subject" json:"subject"`
	Topic    Scalar `yaml:"topic" json:"topic"`
	Subtopic Scalar `yaml:"subtopic" json:"subtopic"`
}

// StepProbe is one follow-up question in the teaching script.
type StepProbe struct {
	Probe    string `yaml:"probe" json:"probe"`
	Expected Scalar `yaml:"expected,omitempty" json:"expected,omitempty"`
}

// QuickCheck is a checkpoint question with a known answer.
type QuickCheck struct {
	Question   string `yaml:"question" json:"question"`
	Answer     Scalar `yaml:"answer" json:"answer"`
	AnswerType string `yaml:"answer_type,omitempty" json:"answer_type,omitempty"` // integer, decimal, fraction, text
}

// Document is an authored curriculum subtopic. Every field except Path is
// optional.
type Document struct {
	Path             Path           `yaml:"path" json:"path"`
	Objective        string         `yaml:"objective,omitempty" json:"objective,omitempty"`
	FirstProbe       string         `yaml:"first_probe,omitempty" json:"first_probe,omitempty"`
	StepProbes       []StepProbe    `yaml:"step_probes,omitempty" json:"step_probes,omitempty"`
	SummaryTemplates []string       `yaml:"summary_templates,omitempty" json:"summary_templates,omitempty"`
	QuickChecks      []QuickCheck   `yaml:"quick_checks,omitempty" json:"quick_checks,omitempty"`
	Metadata         map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Parse decodes a JSON or YAML curriculum document. It does not check
// required fields; call Validate on the raw bytes first.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return &doc, nil
}

// LoadFile reads, validates and parses the document at path.
func LoadFile(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Validate(data); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, data, nil
}

// ContentPath returns the slash-joined grade/subject/topic/subtopic path
// the document is stored under.
func (d *Document) ContentPath() string {
	return JoinPath(d.Path.Grade.String(), d.Path.Subject.String(), d.Path.Topic.String(), d.Path.Subtopic.String())
}

// FlowPath returns the path of the compiled conversation flow.
func (d *Document) FlowPath() string {
	return FlowPathFor(d.ContentPath())
}

// FlowSuffix is appended to a content path to locate its flow document.
const FlowSuffix = "/flows/main"

// FlowPathFor returns the flow path for a content path.
func FlowPathFor(contentPath string) string {
	return strings.TrimSuffix(contentPath, "/") + FlowSuffix
}

// JoinPath joins path segments with "/", trimming whitespace and stray
// slashes from each segment.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(strings.TrimSpace(s), "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// Topic returns the most specific human-readable label for the document.
func (d *Document) Topic() string {
	for _, s := range []Scalar{d.Path.Subtopic, d.Path.Topic, d.Path.Subject} {
		if s != "" {
			return strings.ReplaceAll(s.String(), "_", " ")
		}
	}
	return "this problem"
}

// Version returns metadata.version as a canonical semver string, or
// "v0.0.0" when absent or malformed. Validate rejects unquoted dotted
// versions, which YAML would read as floats.
func (d *Document) Version() string {
	if d.Metadata == nil {
		return "v0.0.0"
	}
	raw, ok := d.Metadata["version"]
	if !ok || raw == nil {
		return "v0.0.0"
	}
	v := strings.TrimSpace(fmt.Sprint(raw))
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "v0.0.0"
	}
	return semver.Canonical(v)
}

// QuickCheckFor resolves a checkpoint reference ("checkpoint_1") to its
// quick check. References are 1-based.
func (d *Document) QuickCheckFor(ref string) (QuickCheck, bool) {
	var n int
	if _, err := fmt.Sscanf(ref, "checkpoint_%d", &n); err != nil || n < 1 {
		return QuickCheck{}, false
	}
	if n > len(d.QuickChecks) {
		return QuickCheck{}, false
	}
	qc := d.QuickChecks[n-1]
	if strings.TrimSpace(qc.Question) == "" {
		return QuickCheck{}, false
	}
	return qc, true
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "scalar"
}
