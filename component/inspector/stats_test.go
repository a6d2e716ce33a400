package inspector

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTotalSQLTime(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.Duration(0), TotalSQLTime(nil))
	require.Equal(t, 45*time.Millisecond, TotalSQLTime([]QueryRecord{
		rec("A", 10*time.Millisecond),
		rec("B", 20*time.Millisecond),
		rec("C", 15*time.Millisecond),
	}))
}

func TestStatsReporterHeaders(t *testing.T) {
	t.Parallel()

	// 5 queries, 3 excess duplicates, 45 ms SQL time, 120 ms request time
	batch := RequestBatch{
		Records: []QueryRecord{
			rec("A", 9*time.Millisecond),
			rec("A", 9*time.Millisecond),
			rec("A", 9*time.Millisecond),
			rec("B", 9*time.Millisecond),
			rec("B", 9*time.Millisecond),
		},
		RequestTime: 120 * time.Millisecond,
	}
	_, excess := Duplicates(batch.Records)
	require.Equal(t, 3, excess)

	reporter := NewStatsReporter(false, true, 3, 20, zap.NewNop())
	headers := reporter.Output(batch, excess)
	require.Equal(t, map[string]string{
		"X-QueryInspect-Num-SQL-Queries":       "5",
		"X-QueryInspect-Total-SQL-Time":        "45 ms",
		"X-QueryInspect-Total-Request-Time":    "120 ms",
		"X-QueryInspect-Duplicate-SQL-Queries": "3",
	}, headers)
}

func TestStatsReporterHeadersDisabled(t *testing.T) {
	t.Parallel()

	reporter := NewStatsReporter(false, false, 3, 20, zap.NewNop())
	require.Nil(t, reporter.Output(RequestBatch{}, 0))
}

func TestStatsReporterLogLine(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	reporter := NewStatsReporter(true, false, 3, 20, zap.New(core))

	batch := RequestBatch{
		Records:     []QueryRecord{rec("A", 30*time.Millisecond)},
		RequestTime: 80 * time.Millisecond,
	}
	reporter.Output(batch, 0)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.True(t, strings.Contains(entries[0].Message,
		"1 queries (0 duplicates), 30 ms SQL time, 80 ms total request time"),
		"got %q", entries[0].Message)
}

func TestStatsReporterMillisTruncation(t *testing.T) {
	t.Parallel()

	reporter := NewStatsReporter(false, true, 3, 20, zap.NewNop())
	batch := RequestBatch{
		Records:     []QueryRecord{rec("A", 1999*time.Microsecond)},
		RequestTime: 2999 * time.Microsecond,
	}
	headers := reporter.Output(batch, 0)
	require.Equal(t, "1 ms", headers[HeaderTotalSQLTime])
	require.Equal(t, "2 ms", headers[HeaderTotalRequestTime])
}
