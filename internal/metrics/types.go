package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Enrollments        *prometheus.CounterVec
	PartnerMatches     prometheus.Counter
	Promotions         prometheus.Counter
	SlotsGenerated     prometheus.Counter
	GamesScheduled     prometheus.Counter
	GamesSkipped       prometheus.Counter
	ConflictsDetected  prometheus.Counter
	SchedulingDuration prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
