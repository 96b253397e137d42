package safety

import (
	"math/rand/v2"
	"strings"
)

// FallbackInput is the context for a fallback redirect.
type FallbackInput struct {
	Topic          string
	StudentMessage string
}

// Picker returns an index in [0, n). It must be safe for concurrent use.
type Picker func(n int) int

// FallbackTemplates are generic Socratic redirects. Each one asks exactly
// one question and passes the default Filter for any plain topic name.
var FallbackTemplates = []string{
	"Let's think about {topic} together. What do you notice first?",
	"What is one thing you already know about {topic}?",
	"How could we break this {topic} problem into smaller pieces?",
	"What would happen if we tried a smaller version of this {topic} problem?",
	"Can you tell me in your own words what this {topic} question is asking?",
}

const defaultTopic = "this topic"

// FallbackGenerator emits a redirect when a tutor message fails the filter
// and no rewrite is available.
type FallbackGenerator struct {
	templates []string
	pick      Picker
}

// NewFallbackGenerator creates a generator over FallbackTemplates. A nil
// pick uses math/rand/v2.
func NewFallbackGenerator(pick Picker) *FallbackGenerator {
	if pick == nil {
		pick = rand.IntN
	}
	return &FallbackGenerator{templates: FallbackTemplates, pick: pick}
}

// Generate returns one template with the topic filled in.
func (g *FallbackGenerator) Generate(in FallbackInput) string {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	i := g.pick(len(g.templates))
	if i < 0 || i >= len(g.templates) {
		i = 0
	}
	return strings.ReplaceAll(g.templates[i], "{topic}", topic)
}
