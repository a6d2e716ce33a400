package inspector

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsInspected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queryinspect_requests_inspected_total",
		Help: "Number of requests that produced an inspection report.",
	})
	duplicateQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queryinspect_duplicate_queries_total",
		Help: "Total excess duplicate query executions observed.",
	})
	outlierQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "queryinspect_outlier_queries_total",
		Help: "Queries flagged as latency outliers.",
	}, []string{"detector"})
)

func init() {
	prometheus.MustRegister(requestsInspected, duplicateQueries, outlierQueries)
}
