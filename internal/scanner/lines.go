package scanner

import "strings"

// LineNumberAt returns the 1-based line containing offset.
func LineNumberAt(text string, offset int) int {
	offset = clamp(offset, len(text))
	return strings.Count(text[:offset], "\n") + 1
}

// LineTextAt returns the whitespace-trimmed line containing offset.
func LineTextAt(text string, offset int) string {
	offset = clamp(offset, len(text))
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end == -1 {
		end = len(text)
	} else {
		end += offset
	}
	return strings.TrimSpace(text[start:end])
}

func clamp(offset, n int) int {
	if offset < 0 {
		return 0
	}
	if offset > n {
		return n
	}
	return offset
}
