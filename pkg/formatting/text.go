package formatting

import (
	"regexp"
	"strings"
)

var (
	codeFenceRegex  = regexp.MustCompile("(?s)```.*?```")
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

const singleLineWords = 18

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// TwoLines normalizes a summary to plain text of at most two lines. Short
// summaries stay on one line; longer ones are split in half by words.
// An empty result means there was nothing usable.
func TwoLines(text string) string {
	txt := codeFenceRegex.ReplaceAllString(text, "")
	txt = strings.TrimSpace(whitespaceRegex.ReplaceAllString(txt, " "))
	if txt == "" {
		return ""
	}

	words := strings.Fields(txt)
	if len(words) <= singleLineWords {
		return txt
	}

	mid := len(words) / 2
	return strings.Join(words[:mid], " ") + "\n" + strings.Join(words[mid:], " ")
}
