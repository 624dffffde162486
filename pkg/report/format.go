package report

import (
	"time"
	"unicode/utf8"
)

// DateTimeLayout is the display layout for timestamps
const DateTimeLayout = "2006-01-02 15:04:05"

// DefaultTruncateLength is the length Truncate callers use for free text
const DefaultTruncateLength = 50

// FormatDateTime formats t for display, or "Never" when t is nil
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Never"
	}
	return t.Format(DateTimeLayout)
}

// Truncate shortens s to n runes followed by "..."
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// orNA substitutes "N/A" for empty cells
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
