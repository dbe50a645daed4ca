package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncEnrollments(status string)
	IncPartnerMatches()
	IncPromotions()
	IncSlotsGenerated(n int)
	IncGamesScheduled(n int)
	IncGamesSkipped(n int)
	IncConflictsDetected(n int)
	ObserveSchedulingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
