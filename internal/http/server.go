package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/enrollment"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/publisher"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
)

func NewServer(db *sql.DB, registry enrollment.Registry, engine scheduling.Engine, pub *publisher.Publisher, metricsHandler http.Handler, clock clockwork.Clock, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		DB:             db,
		Enrollment:     registry,
		Scheduling:     engine,
		Publisher:      pub,
		MetricsHandler: metricsHandler,
		Clock:          clock,
		Router:         chi.NewRouter(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// Every route goes through paramsMiddleware (dry_run, verbose) and
	// actorMiddleware (caller identity from the gateway headers).
	s.Router.Use(paramsMiddleware, actorMiddleware)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Get("/health", handlers.HealthCheckHandler(s.DB))

	s.Router.Route("/sub-events/{id}", func(r chi.Router) {
		r.Post("/enrollments", handlers.EnrollHandler(s.Enrollment))
		r.Get("/enrollments", handlers.SubEventEnrollmentsHandler(s.Enrollment))
		r.Post("/guest-enrollments", handlers.EnrollGuestHandler(s.Enrollment))
		r.Get("/waiting-list", handlers.WaitingListHandler(s.Enrollment))
		r.Get("/partner-seekers", handlers.PartnerSeekersHandler(s.Enrollment))
	})

	s.Router.Route("/enrollments", func(r chi.Router) {
		r.Get("/", handlers.ListEnrollmentsHandler(s.Enrollment))
		r.Get("/me", handlers.MyEnrollmentsHandler(s.Enrollment))
		r.Get("/{id}", handlers.GetEnrollmentHandler(s.Enrollment))
		r.Patch("/{id}", handlers.UpdateEnrollmentHandler(s.Enrollment))
		r.Post("/{id}/cancel", handlers.CancelEnrollmentHandler(s.Enrollment))
		r.Post("/{id}/promote", handlers.PromoteEnrollmentHandler(s.Enrollment))
	})

	s.Router.Route("/tournaments/{id}", func(r chi.Router) {
		r.Post("/slots/generate", handlers.GenerateSlotsHandler(s.Scheduling))
		r.Post("/slots", handlers.CreateSlotHandler(s.Scheduling))
		r.Get("/slots", handlers.ListSlotsHandler(s.Scheduling))
		r.Get("/slots/available", handlers.AvailableSlotsHandler(s.Scheduling))
		r.Get("/games/unscheduled", handlers.UnscheduledGamesHandler(s.Scheduling))
		r.Post("/schedule", handlers.ScheduleGamesHandler(s.Scheduling))
		r.Get("/conflicts", handlers.ConflictsHandler(s.Publisher, s.Scheduling))
		r.Post("/publish", handlers.PublishScheduleHandler(s.Publisher))
		r.Post("/sync-bookings", handlers.SyncBookingsHandler(s.Scheduling, s.Clock.Now))
	})

	s.Router.Route("/slots/{id}", func(r chi.Router) {
		r.Get("/", handlers.GetSlotHandler(s.Scheduling))
		r.Delete("/", handlers.DeleteSlotHandler(s.Scheduling))
		r.Post("/assign", handlers.AssignGameHandler(s.Scheduling))
		r.Post("/remove-game", handlers.RemoveGameHandler(s.Scheduling))
		r.Post("/block", handlers.BlockSlotHandler(s.Scheduling))
		r.Post("/unblock", handlers.UnblockSlotHandler(s.Scheduling))
		r.Post("/start", handlers.StartSlotHandler(s.Scheduling))
	})

	s.Router.Post("/pubsub/games-scheduled", handlers.GamesScheduledHandler(s.Publisher, s.pubsub))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
