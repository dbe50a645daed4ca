package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/enrollment"
	"github.com/mauv0809/courtside/internal/publisher"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
)

type Server struct {
	DB             *sql.DB
	Enrollment     enrollment.Registry
	Scheduling     scheduling.Engine
	Publisher      *publisher.Publisher
	MetricsHandler http.Handler
	Clock          clockwork.Clock
	Router         chi.Router
	pubsub         pubsub.PubSubClient
}
