package dbkit

import "github.com/VictoriaMetrics/metrics"

var (
	queriesTotal        = metrics.NewCounter("dbkit_queries_total")
	queryErrorsTotal    = metrics.NewCounter("dbkit_query_errors_total")
	reconnectsTotal     = metrics.NewCounter("dbkit_reconnects_total")
	resultsExpiredTotal = metrics.NewCounter("dbkit_results_expired_total")
)
