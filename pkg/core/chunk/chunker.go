// Package chunk splits extracted document text into bounded, paragraph-aligned
// slices for independent downstream extraction.
package chunk

import (
	"regexp"
	"strings"
)

// DefaultMaxChars balances LLM context cost against the risk of a label and
// its value straddling a chunk boundary.
const DefaultMaxChars = 3000

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// Split packs blank-line-delimited paragraphs greedily into chunks of at most
// maxChars. A single paragraph longer than maxChars becomes its own oversized
// chunk; paragraphs are never truncated or split mid-way. Chunk order matches
// document order. Empty input yields no chunks.
func Split(text string, maxChars int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	paragraphs := paragraphBreak.Split(text, -1)
	var chunks []string
	var current []string
	currentLen := 0

	for _, p := range paragraphs {
		plen := len(p) + 2
		if currentLen+plen > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = []string{p}
			currentLen = plen
		} else {
			current = append(current, p)
			currentLen += plen
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}
