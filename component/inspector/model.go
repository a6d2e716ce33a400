package inspector

import "time"

// StackFrame is one frame of a captured call stack, deepest frame last.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

// QueryRecord is an immutable snapshot of one executed statement. Stack
// is nil unless traceback capture is enabled upstream.
type QueryRecord struct {
	SQL     string
	Elapsed time.Duration
	Stack   []StackFrame
}

// RequestBatch is the ordered sequence of records observed during a
// single request plus the request's wall-clock time. It is owned by
// exactly one in-flight request and discarded after reporting.
type RequestBatch struct {
	Records     []QueryRecord
	RequestTime time.Duration
}

// DuplicateGroup is one statement text repeated within a request.
type DuplicateGroup struct {
	SQL   string
	Count int
}

// Report summarizes one request's query activity. Headers is nil when
// header emission is disabled.
type Report struct {
	Queries         int
	DuplicateExcess int
	SQLTime         time.Duration
	RequestTime     time.Duration
	Headers         map[string]string
}
