package collector

import (
	"runtime"
	"sync"
	"time"

	"github.com/queryinspect/queryinspect/component/inspector"

	"go.uber.org/atomic"
)

// selfFile is this package's source file; frames from it are dropped
// from captured stacks so tracebacks point at caller code.
var selfFile string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if ok {
		selfFile = file
	}
}

// Collector accumulates every statement executed process-wide, in
// execution order. Request-scoped engines slice this list by the offset
// they observed at request start. It is the only synchronized structure
// in the system; the per-request batches cut from it are never shared.
type Collector struct {
	mu      sync.Mutex
	records []inspector.QueryRecord

	count atomic.Int64

	captureStacks bool
	roots         []string
}

// New builds a collector. When captureStacks is set, every recorded
// statement carries a filtered call stack; roots restricts the kept
// frames to the given path prefixes.
func New(captureStacks bool, roots []string) *Collector {
	return &Collector{
		captureStacks: captureStacks,
		roots:         roots,
	}
}

// Record appends one executed statement. It is called from the database
// interception point after each Exec/Query completes, including failed
// ones, mirroring the time the application actually spent.
func (c *Collector) Record(sql string, elapsed time.Duration) {
	record := inspector.QueryRecord{SQL: sql, Elapsed: elapsed}
	if c.captureStacks {
		record.Stack = captureStack(c.roots)
	}

	c.mu.Lock()
	c.records = append(c.records, record)
	c.mu.Unlock()
	c.count.Inc()
}

// Count returns the number of statements recorded so far. Engines call
// it at request start to mark their slicing offset, so it must not
// block behind Record's critical section.
func (c *Collector) Count() int {
	return int(c.count.Load())
}

// Since returns a snapshot of the records starting at the given offset.
func (c *Collector) Since(offset int) []inspector.QueryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.records) {
		return nil
	}
	out := make([]inspector.QueryRecord, len(c.records)-offset)
	copy(out, c.records[offset:])
	return out
}

// All returns a snapshot of every record.
func (c *Collector) All() []inspector.QueryRecord {
	return c.Since(0)
}

// captureStack walks the current goroutine's stack and returns it
// deepest frame last, with instrumentation frames and out-of-root
// frames filtered out.
func captureStack(roots []string) []inspector.StackFrame {
	pcs := make([]uintptr, 64)
	// skip runtime.Callers and captureStack itself
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var stack []inspector.StackFrame
	for {
		frame, more := frames.Next()
		stack = append(stack, inspector.StackFrame{
			File:     frame.File,
			Line:     frame.Line,
			Function: frame.Function,
		})
		if !more {
			break
		}
	}

	// runtime yields innermost first; reverse to deepest-last
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return inspector.FilterFrames(stack, selfFile, roots)
}
