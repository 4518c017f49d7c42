package ui

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

var printer = message.NewPrinter(language.English)

// formatPrice renders a dollar amount with grouping, e.g. $1,299.99.
func formatPrice(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// formatClock renders a unix-millisecond timestamp as local wall time.
func formatClock(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("15:04")
}

// cleanInput trims text typed into an input and normalises it to NFC so
// that visually equal strings compare equal in state.
func cleanInput(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
