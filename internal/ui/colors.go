package ui

import "strings"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Convenience helper to build styled strings. Keep minimal so tests can use constants directly.
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Heading styles a section title
func Heading(s string) string {
	return ColorBold + ColorWhite + s + ColorReset
}

// Value styles a headline number
func Value(s string) string {
	return ColorBold + ColorCyan + s + ColorReset
}

// Bar draws n out of max as a horizontal bar of at most width cells
func Bar(n, max, width int) string {
	if max <= 0 || n <= 0 || width <= 0 {
		return ""
	}
	cells := n * width / max
	if cells == 0 {
		cells = 1
	}
	return ColorGreen + strings.Repeat("█", cells) + ColorReset
}

// Strip removes the ANSI sequences defined in this package
func Strip(s string) string {
	return strings.NewReplacer(
		ColorReset, "", ColorBold, "", ColorDim, "",
		ColorCyan, "", ColorGreen, "", ColorYellow, "", ColorWhite, "", ColorRed, "",
	).Replace(s)
}
