package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_enrollments_total",
			Help: "The total number of enrollments admitted, by initial status.",
		}, []string{"status"}),
		PartnerMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_partner_matches_total",
			Help: "The total number of mutual doubles partner matches.",
		}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_waiting_list_promotions_total",
			Help: "The total number of enrollments promoted from a waiting list.",
		}),
		SlotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slots_generated_total",
			Help: "The total number of schedule slots created by generation.",
		}),
		GamesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_games_scheduled_total",
			Help: "The total number of games assigned by automatic scheduling.",
		}),
		GamesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_games_skipped_total",
			Help: "The total number of games automatic scheduling could not place.",
		}),
		ConflictsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_schedule_conflicts_total",
			Help: "The total number of schedule conflicts reported.",
		}),
		SchedulingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_scheduling_duration_seconds",
			Help:    "The duration of bulk game scheduling runs.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Enrollments,
		s.PartnerMatches,
		s.Promotions,
		s.SlotsGenerated,
		s.GamesScheduled,
		s.GamesSkipped,
		s.ConflictsDetected,
		s.SchedulingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncEnrollments(status string) {
	s.Enrollments.WithLabelValues(status).Inc()
}

func (s *Service) IncPartnerMatches() {
	s.PartnerMatches.Inc()
}

func (s *Service) IncPromotions() {
	s.Promotions.Inc()
}

func (s *Service) IncSlotsGenerated(n int) {
	s.SlotsGenerated.Add(float64(n))
}

func (s *Service) IncGamesScheduled(n int) {
	s.GamesScheduled.Add(float64(n))
}

func (s *Service) IncGamesSkipped(n int) {
	s.GamesSkipped.Add(float64(n))
}

func (s *Service) IncConflictsDetected(n int) {
	s.ConflictsDetected.Add(float64(n))
}

func (s *Service) ObserveSchedulingDuration(duration float64) {
	s.SchedulingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
