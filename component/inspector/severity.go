package inspector

import "github.com/fatih/color"

// Severity classifies a duplicate count for log styling. It carries no
// other behavior.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

// ClassifySeverity maps a duplicate count to a severity. The high
// boundary is checked first; when the thresholds are misconfigured
// (medium >= high) the result is still deterministic, though not
// monotonic in the operator's intended sense.
func ClassifySeverity(count, medium, high int) Severity {
	if count > high {
		return SeverityHigh
	}
	if count > medium {
		return SeverityMedium
	}
	return SeverityLow
}

// Colorize styles a log message according to severity.
func (s Severity) Colorize(msg string) string {
	switch s {
	case SeverityHigh:
		return red.Sprint(msg)
	case SeverityMedium:
		return yellow.Sprint(msg)
	default:
		return green.Sprint(msg)
	}
}
