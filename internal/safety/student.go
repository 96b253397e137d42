package safety

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputRunes is the longest student message kept by Sanitize.
const MaxInputRunes = 500

// Ellipsis marks a truncated student message.
const Ellipsis = "..."

var (
	markupStripper = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Sanitize normalizes incoming student text: it strips < > { }, collapses
// whitespace runs to one space, trims, and truncates to MaxInputRunes
// followed by Ellipsis. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	s := markupStripper.Replace(text)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	// Truncated output keeps its first MaxInputRunes runes on a second
	// pass, so it is a fixed point.
	if utf8.RuneCountInString(s) > MaxInputRunes {
		s = string([]rune(s)[:MaxInputRunes]) + Ellipsis
	}
	return s
}

// frustrationRe matches distress phrases and disengagement fillers anywhere
// in the lower-cased message.
var frustrationRe = regexp.MustCompile(`(?:` + strings.Join([]string{
	`i don'?t know`, `idk`, `no idea`, `dunno`,
	`i give up`, `give up`, `too hard`, `this is hard`, `so hard`,
	`i can'?t`, `confused`, `i'?m lost`, `don'?t get it`, `doesn'?t make sense`,
	`hate this`, `boring`, `help`,
	`whatever`, `ok`, `okay`, `fine`, `sure`,
}, "|") + `)`)

// DetectFrustration reports whether a student message signals distress or
// disengagement: a known phrase, a reply of three characters or fewer, or
// two or more question marks.
func DetectFrustration(message string) bool {
	trimmed := strings.TrimSpace(message)
	if utf8.RuneCountInString(trimmed) <= 3 {
		return true
	}
	if strings.Count(message, "?") >= 2 {
		return true
	}
	lower := strings.ReplaceAll(strings.ToLower(message), "’", "'")
	return frustrationRe.MatchString(lower)
}

// Categories of non-educational content.
const (
	TopicPersonalInfo = "personal-info"
	TopicSocialMedia  = "social-media"
	TopicGames        = "games"
	TopicJokes        = "jokes"
	TopicStories      = "stories"
)

// NonEducational lists the patterns IsAppropriate rejects, by category.
var NonEducational = map[string][]*regexp.Regexp{
	TopicPersonalInfo: {
		regexp.MustCompile(`(?i)\b(?:your|my) (?:home )?(?:address|phone|password|last name|birthday)\b`),
		regexp.MustCompile(`(?i)\bwhere do (?:you|u) live\b`),
		regexp.MustCompile(`(?i)\bhow old are (?:you|u)\b`),
		regexp.MustCompile(`(?i)\bphone number\b`),
		regexp.MustCompile(`(?i)\be-?mail\b`),
	},
	TopicSocialMedia: termPatterns("instagram", "tiktok", "snapchat", "facebook", "twitter", "youtube", "discord", "whatsapp"),
	TopicGames: {
		regexp.MustCompile(`(?i)\b(?:fortnite|minecraft|roblox|pokemon)\b`),
		regexp.MustCompile(`(?i)\bvideo ?games?\b`),
		regexp.MustCompile(`(?i)\bplay a game\b`),
	},
	TopicJokes: {
		regexp.MustCompile(`(?i)\bjokes?\b`),
	},
	TopicStories: {
		regexp.MustCompile(`(?i)\bstor(?:y|ies)\b`),
	},
}

// nonEducationalOrder fixes the evaluation order of NonEducational.
var nonEducationalOrder = []string{TopicPersonalInfo, TopicSocialMedia, TopicGames, TopicJokes, TopicStories}

// IsAppropriate reports whether content stays within educational bounds.
// It is a coarse gate, independent of the Filter battery.
func IsAppropriate(content string) bool {
	return NonEducationalCategory(content) == ""
}

// NonEducationalCategory returns the first category content falls into,
// or "" if it is appropriate.
func NonEducationalCategory(content string) string {
	for _, cat := range nonEducationalOrder {
		if matchesAny(NonEducational[cat], content) {
			return cat
		}
	}
	return ""
}
