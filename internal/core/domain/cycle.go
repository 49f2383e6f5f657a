package domain

import "strings"

// FormatCycle renders the cycle closed by an edge from the end of path back to closing.
// The rendered path starts at the first occurrence of closing, e.g. "a -> b -> a".
func FormatCycle(path []string, closing string) string {
	start := 0
	for i, node := range path {
		if node == closing {
			start = i
			break
		}
	}

	var b strings.Builder
	for _, node := range path[start:] {
		b.WriteString(node)
		b.WriteString(" -> ")
	}
	b.WriteString(closing)
	return b.String()
}
