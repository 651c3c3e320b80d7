package utils

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// outerFence matches a narrative wrapped whole in one code fence, with any
// language tag.
var outerFence = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\n(.*?)\n?```$")

// CleanMarkdown strips an outer code fence and surrounding whitespace from an
// LLM narrative so it is ready for rendering or storage. Fences inside the
// narrative are left alone.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if m := outerFence.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	return cleaned
}

// ValidateMarkdown reports whether the string parses as Markdown. Goldmark is
// permissive, so this is a basic sanity gate for synthesized narratives.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}
