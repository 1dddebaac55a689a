package atlassian

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var markupTag = regexp.MustCompile(`<[^>]+>`)

// StripMarkup replaces every tag with a single space and unescapes HTML entities.
// The input is not modified; callers scan the returned copy.
func StripMarkup(body string) string {
	return html.UnescapeString(markupTag.ReplaceAllString(body, " "))
}

// ExtractSnippets returns a context window around every case-insensitive occurrence
// of term in the tag-stripped body, in order of appearance.
//
// Offsets are counted in runes. After a match the scan resumes at the end of the
// match, so occurrences never overlap. An empty term has no matches and a negative
// contextChars is treated as zero.
func ExtractSnippets(body, term string, contextChars int) []string {
	snippets := []string{}
	if term == "" {
		return snippets
	}
	if contextChars < 0 {
		contextChars = 0
	}

	text := []rune(StripMarkup(body))
	lowered := lowerRunes(text)
	needle := lowerRunes([]rune(term))

	for cursor := 0; ; {
		pos := indexRunes(lowered, needle, cursor)
		if pos < 0 {
			break
		}

		start := max(0, pos-contextChars)
		end := min(len(text), pos+len(needle)+contextChars)
		snippets = append(snippets, strings.TrimSpace(string(text[start:end])))

		cursor = pos + len(needle)
	}

	return snippets
}

// lowerRunes lower-cases rune by rune so offsets in the result line up with the input
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune, from int) int {
	last := len(haystack) - len(needle)
	for i := from; i <= last; i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
