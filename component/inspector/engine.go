package inspector

import (
	"fmt"
	"time"

	"github.com/queryinspect/queryinspect/config"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// State is the engine's per-request lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StateReported
)

// Engine inspects the queries executed during a single request. One
// instance serves exactly one request: Start opens the batch, Finalize
// produces the report and is terminal. The hosting layer guarantees an
// instance is never shared between concurrent requests, so no locking
// is needed here.
type Engine struct {
	cfg    config.Inspect
	logger *zap.Logger

	state       State
	startTime   time.Time
	startOffset int
}

// NewEngine builds a request-scoped engine around an immutable,
// already-validated inspection config. A nil logger falls back to the
// process-wide one.
func NewEngine(cfg config.Inspect, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = log.L()
	}
	return &Engine{cfg: cfg, logger: logger, state: StateIdle}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Start opens the inspection window for a request. queriesExecuted is
// the number of queries already recorded process-wide, so statements
// attributable to earlier requests on the same connection are excluded.
// The engine stays Idle when inspection is disabled or the path matches
// an ignore pattern; a later Finalize is then a no-op.
func (e *Engine) Start(path string, queriesExecuted int) {
	if e.state != StateIdle || !e.cfg.Enabled || e.cfg.IgnorePath(path) {
		return
	}
	e.startTime = time.Now()
	e.startOffset = queriesExecuted
	e.state = StateActive
}

// Finalize slices out the queries executed since Start, runs duplicate
// detection, both outlier detectors and the stats reporter, and returns
// the report. It returns (nil, false) unless the engine is Active:
// finalizing a request that was never started is tolerated, not an
// error. The engine is terminal afterwards.
func (e *Engine) Finalize(all []QueryRecord) (*Report, bool) {
	if e.state != StateActive {
		return nil, false
	}
	e.state = StateReported

	var records []QueryRecord
	if e.startOffset < len(all) {
		records = all[e.startOffset:]
	}
	batch := RequestBatch{
		Records:     records,
		RequestTime: time.Since(e.startTime),
	}

	excess := e.checkDuplicates(batch.Records)
	e.checkStddevLimit(batch.Records)
	e.checkAbsoluteLimit(batch.Records)

	reporter := NewStatsReporter(e.cfg.LogStats, e.cfg.HeaderStats,
		e.cfg.Threshold.Medium, e.cfg.Threshold.High, e.logger)
	headers := reporter.Output(batch, excess)

	requestsInspected.Inc()
	duplicateQueries.Add(float64(excess))

	return &Report{
		Queries:         len(batch.Records),
		DuplicateExcess: excess,
		SQLTime:         TotalSQLTime(batch.Records),
		RequestTime:     batch.RequestTime,
		Headers:         headers,
	}, true
}

func (e *Engine) checkDuplicates(records []QueryRecord) int {
	groups, excess := Duplicates(records)
	if !e.cfg.LogQueries {
		return excess
	}

	var bySQL map[string][]QueryRecord
	if e.cfg.LogTracebacks {
		bySQL = GroupBySQL(records)
	}
	for _, g := range groups {
		severity := ClassifySeverity(g.Count, e.cfg.Threshold.Medium, e.cfg.Threshold.High)
		e.logger.Info(severity.Colorize(
			fmt.Sprintf("[SQL] repeated query (%dx): %s", g.Count, g.SQL)))

		if e.cfg.LogTracebacks {
			if rs := bySQL[g.SQL]; len(rs) > 0 && len(rs[0].Stack) > 0 {
				e.logger.Info("Traceback:\n" + FormatFrames(rs[0].Stack))
			}
		}
	}
	return excess
}

func (e *Engine) checkStddevLimit(records []QueryRecord) {
	limit, outliers := StatisticalOutliers(records, e.cfg.StddevMultiplier)
	for _, r := range outliers {
		outlierQueries.WithLabelValues("stddev").Inc()
		e.logger.Info(fmt.Sprintf(
			"[SQL] query execution of %d ms over limit of %d ms (%.1f dev above mean): %s",
			r.Elapsed.Milliseconds(), limit.Milliseconds(), e.cfg.StddevMultiplier, r.SQL))
	}
}

func (e *Engine) checkAbsoluteLimit(records []QueryRecord) {
	limit := time.Duration(e.cfg.AbsoluteLimitMillis) * time.Millisecond
	for _, r := range AbsoluteOutliers(records, limit) {
		outlierQueries.WithLabelValues("absolute").Inc()
		e.logger.Info(fmt.Sprintf(
			"[SQL] query execution of %d ms over absolute limit of %d ms: %s",
			r.Elapsed.Milliseconds(), limit.Milliseconds(), r.SQL))
	}
}
