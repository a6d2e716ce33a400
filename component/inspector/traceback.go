package inspector

import (
	"fmt"
	"strings"
)

// FilterFrames removes frames originating in the instrumentation's own
// source file and, when roots are configured, frames outside the root
// path prefixes. With no roots every non-self frame is kept. The input
// order (deepest frame last) is preserved; the result may be empty.
func FilterFrames(frames []StackFrame, selfFile string, roots []string) []StackFrame {
	var kept []StackFrame
	for _, f := range frames {
		if f.File == selfFile {
			continue
		}
		if len(roots) == 0 {
			kept = append(kept, f)
			continue
		}
		for _, root := range roots {
			if strings.HasPrefix(f.File, root) {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept
}

// FormatFrames renders a captured stack for a duplicate-query log
// entry, one frame per line.
func FormatFrames(frames []StackFrame) string {
	var b strings.Builder
	for _, f := range frames {
		fmt.Fprintf(&b, "  File %q, line %d, in %s\n", f.File, f.Line, f.Function)
	}
	return b.String()
}
