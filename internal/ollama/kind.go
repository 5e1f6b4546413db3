package ollama

import (
	"fmt"
	"strings"
)

// Kind selects the prompt template for an analysis.
type Kind int

const (
	KindSummary Kind = iota
	KindDiscussion
	KindReadingGuide
	KindRecommendation
)

// Kinds lists every analysis kind in menu order.
var Kinds = []Kind{KindSummary, KindDiscussion, KindReadingGuide, KindRecommendation}

// String returns the identifier used in config and prefs.
func (k Kind) String() string {
	switch k {
	case KindDiscussion:
		return "discussion"
	case KindReadingGuide:
		return "reading_guide"
	case KindRecommendation:
		return "recommendation"
	default:
		return "summary"
	}
}

// Label is the human-facing name.
func (k Kind) Label() string {
	switch k {
	case KindDiscussion:
		return "Discussion questions"
	case KindReadingGuide:
		return "Reading guide"
	case KindRecommendation:
		return "Recommendation"
	default:
		return "Summary"
	}
}

// ParseKind maps an identifier to a Kind. Anything unrecognized is
// KindSummary.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discussion":
		return KindDiscussion
	case "reading_guide", "reading-guide", "guide":
		return KindReadingGuide
	case "recommendation":
		return KindRecommendation
	default:
		return KindSummary
	}
}

// BuildPrompt renders the template for kind. Only the title and first author
// are interpolated.
func BuildPrompt(kind Kind, title, author string) string {
	switch kind {
	case KindDiscussion:
		return discussionPrompt(title, author)
	case KindReadingGuide:
		return readingGuidePrompt(title, author)
	case KindRecommendation:
		return recommendationPrompt(title, author)
	default:
		return summaryPrompt(title, author)
	}
}

func summaryPrompt(title, author string) string {
	return fmt.Sprintf(`Analyze the book "%s" by %s. Give me:
📖 **PLOT**: (2-3 sentences about the main story)
👤 **CHARACTERS**: (main character and their motivation)
🎭 **THEMES**: (key themes explored)
✍️ **STYLE**: (writing style and significance)`, title, author)
}

func discussionPrompt(title, author string) string {
	return fmt.Sprintf(`Create discussion questions for "%s" by %s. Give me:
👤 **CHARACTER QUESTION**: (about the main character)
🎭 **THEME QUESTION**: (about the main themes)
📖 **PLOT QUESTION**: (about the central conflict)
🌍 **MODERN RELEVANCE**: (how it relates to today)`, title, author)
}

func readingGuidePrompt(title, author string) string {
	return fmt.Sprintf(`Create a reading guide for "%s" by %s. Give me:
📅 **BEFORE READING**: (what to expect)
📖 **WHILE READING**: (what to watch for)
📝 **AFTER READING**: (key takeaways)
📚 **SIMILAR BOOKS**: (recommendations)`, title, author)
}

func recommendationPrompt(title, author string) string {
	return fmt.Sprintf(`Write a recommendation for "%s" by %s. Give me:
👥 **WHO SHOULD READ**: (target audience)
💡 **WHY READ**: (what makes it special)
🎯 **WHAT YOU'LL GAIN**: (benefits of reading)
📚 **SIMILAR BOOKS**: (if you like this, try...)`, title, author)
}
