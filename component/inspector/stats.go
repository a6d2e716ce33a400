package inspector

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Response header names carrying per-request query statistics.
const (
	HeaderNumQueries       = "X-QueryInspect-Num-SQL-Queries"
	HeaderTotalSQLTime     = "X-QueryInspect-Total-SQL-Time"
	HeaderTotalRequestTime = "X-QueryInspect-Total-Request-Time"
	HeaderDuplicateQueries = "X-QueryInspect-Duplicate-SQL-Queries"
)

// TotalSQLTime sums the elapsed time of every record in the batch.
func TotalSQLTime(records []QueryRecord) time.Duration {
	var total time.Duration
	for _, r := range records {
		total += r.Elapsed
	}
	return total
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

// StatsReporter aggregates a request's query figures into a summary log
// line and a set of response headers.
type StatsReporter struct {
	LogStats    bool
	HeaderStats bool
	Medium      int
	High        int

	logger *zap.Logger
}

func NewStatsReporter(logStats, headerStats bool, medium, high int, logger *zap.Logger) *StatsReporter {
	return &StatsReporter{
		LogStats:    logStats,
		HeaderStats: headerStats,
		Medium:      medium,
		High:        high,
		logger:      logger,
	}
}

// Output emits the summary log line when enabled and returns the header
// map when header emission is enabled, nil otherwise. The summary is
// colorized by the severity of the duplicate excess count.
func (r *StatsReporter) Output(batch RequestBatch, duplicateExcess int) map[string]string {
	sqlTime := TotalSQLTime(batch.Records)
	n := len(batch.Records)

	if r.LogStats {
		severity := ClassifySeverity(duplicateExcess, r.Medium, r.High)
		r.logger.Info(severity.Colorize(fmt.Sprintf(
			"[SQL] %d queries (%d duplicates), %d ms SQL time, %d ms total request time",
			n, duplicateExcess, sqlTime.Milliseconds(), batch.RequestTime.Milliseconds())))
	}

	if !r.HeaderStats {
		return nil
	}
	return map[string]string{
		HeaderNumQueries:       fmt.Sprintf("%d", n),
		HeaderTotalSQLTime:     formatMillis(sqlTime),
		HeaderTotalRequestTime: formatMillis(batch.RequestTime),
		HeaderDuplicateQueries: fmt.Sprintf("%d", duplicateExcess),
	}
}
