package utils

import "strings"

// SplitMessage splits an outbound reply into chunks of at most 'limit' runes.
// It prefers to break on line boundaries so numbered lists stay intact, and
// only cuts inside a line when a single line is longer than the limit.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)

		// Oversized line: strict rune slicing is safer than losing data.
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}

		extra := len(runes)
		if currentLen > 0 {
			extra++ // newline separator
		}
		if currentLen+extra > limit {
			flush()
			extra = len(runes)
		}

		if currentLen > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(string(runes))
		currentLen += extra
	}
	flush()

	return chunks
}
