package inspector

import (
	"math"
	"time"
)

// StatisticalOutliers flags records whose elapsed time exceeds
// mean + multiplier*stddev within the batch. The standard deviation is
// the sample one (n-1 denominator); a batch of fewer than two records
// has stddev 0, so a single record can never be a statistical outlier.
//
// Detection is disabled when multiplier <= 0 or the batch is empty, in
// which case both return values are zero.
func StatisticalOutliers(records []QueryRecord, multiplier float64) (time.Duration, []QueryRecord) {
	n := len(records)
	if multiplier <= 0 || n == 0 {
		return 0, nil
	}

	var total float64
	for _, r := range records {
		total += r.Elapsed.Seconds()
	}
	mean := total / float64(n)

	stddev := 0.0
	if n >= 2 {
		var sqSum float64
		for _, r := range records {
			d := r.Elapsed.Seconds() - mean
			sqSum += d * d
		}
		stddev = math.Sqrt(sqSum / float64(n-1))
	}

	limit := time.Duration((mean + multiplier*stddev) * float64(time.Second))

	var outliers []QueryRecord
	for _, r := range records {
		if r.Elapsed > limit {
			outliers = append(outliers, r)
		}
	}
	return limit, outliers
}

// AbsoluteOutliers flags records whose elapsed time exceeds a fixed
// ceiling, independent of batch statistics. Disabled when limit <= 0 or
// the batch is empty.
func AbsoluteOutliers(records []QueryRecord, limit time.Duration) []QueryRecord {
	if limit <= 0 || len(records) == 0 {
		return nil
	}

	var outliers []QueryRecord
	for _, r := range records {
		if r.Elapsed > limit {
			outliers = append(outliers, r)
		}
	}
	return outliers
}
