package inspector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatisticalOutliersDisabled(t *testing.T) {
	t.Parallel()

	limit, outliers := StatisticalOutliers([]QueryRecord{rec("A", time.Second)}, 0)
	require.Equal(t, time.Duration(0), limit)
	require.Nil(t, outliers)

	limit, outliers = StatisticalOutliers(nil, 2)
	require.Equal(t, time.Duration(0), limit)
	require.Nil(t, outliers)
}

func TestStatisticalOutliersSingleRecord(t *testing.T) {
	t.Parallel()

	// stddev is defined as 0 for n < 2, so the limit equals the mean
	// and the single record cannot exceed it.
	limit, outliers := StatisticalOutliers([]QueryRecord{rec("A", 100*time.Millisecond)}, 2)
	require.Equal(t, 100*time.Millisecond, limit)
	require.Nil(t, outliers)
}

func TestStatisticalOutliersLimit(t *testing.T) {
	t.Parallel()

	// elapsed: 10ms, 20ms, 90ms -> mean 40ms,
	// sample stddev = sqrt(((30^2)+(20^2)+(50^2))/2) ms ~= 43.589ms
	records := []QueryRecord{
		rec("A", 10*time.Millisecond),
		rec("B", 20*time.Millisecond),
		rec("C", 90*time.Millisecond),
	}

	limit, outliers := StatisticalOutliers(records, 1)
	require.InDelta(t, 0.0835889894, limit.Seconds(), 1e-6)
	require.Len(t, outliers, 1)
	require.Equal(t, "C", outliers[0].SQL)

	// with a large multiplier nothing sticks out
	_, outliers = StatisticalOutliers(records, 10)
	require.Nil(t, outliers)
}

func TestStatisticalOutliersUniformBatch(t *testing.T) {
	t.Parallel()

	// identical elapsed times: stddev 0, limit == mean, none above it
	records := []QueryRecord{
		rec("A", 30*time.Millisecond),
		rec("B", 30*time.Millisecond),
		rec("C", 30*time.Millisecond),
	}
	limit, outliers := StatisticalOutliers(records, 2)
	require.Equal(t, 30*time.Millisecond, limit)
	require.Nil(t, outliers)
}

func TestAbsoluteOutliers(t *testing.T) {
	t.Parallel()

	records := []QueryRecord{
		rec("fast", 10*time.Millisecond),
		rec("slow", 120*time.Millisecond),
		rec("edge", 100*time.Millisecond),
	}

	outliers := AbsoluteOutliers(records, 100*time.Millisecond)
	require.Len(t, outliers, 1)
	require.Equal(t, "slow", outliers[0].SQL)

	// disabled when no limit is configured
	require.Nil(t, AbsoluteOutliers(records, 0))
	require.Nil(t, AbsoluteOutliers(nil, 100*time.Millisecond))
}

func TestBothDetectorsMayFlagSameRecord(t *testing.T) {
	t.Parallel()

	records := []QueryRecord{
		rec("A", 1*time.Millisecond),
		rec("B", 2*time.Millisecond),
		rec("C", 500*time.Millisecond),
	}

	_, statistical := StatisticalOutliers(records, 1)
	absolute := AbsoluteOutliers(records, 400*time.Millisecond)
	require.Len(t, statistical, 1)
	require.Len(t, absolute, 1)
	require.Equal(t, statistical[0].SQL, absolute[0].SQL)
}
