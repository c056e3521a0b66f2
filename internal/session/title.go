package session

import "strings"

const (
	// UntitledSession is the title used when a summary has no content line.
	UntitledSession = "Untitled Session"

	// DefaultTitleLength is the maximum title length before truncation.
	DefaultTitleLength = 100
)

// ExtractTitle returns the first line of summary that is neither blank nor
// a markdown header, truncated to maxLen characters plus "..." if longer.
// A negative maxLen is treated as zero.
func ExtractTitle(summary string, maxLen int) string {
	maxLen = max(maxLen, 0)
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return line
	}
	return UntitledSession
}

// Title is ExtractTitle with DefaultTitleLength.
func Title(summary string) string {
	return ExtractTitle(summary, DefaultTitleLength)
}
