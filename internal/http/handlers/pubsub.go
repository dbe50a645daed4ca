package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/publisher"
	"github.com/mauv0809/courtside/internal/pubsub"
)

type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}

// GamesScheduledHandler receives the schedule-games-scheduled push
// subscription and reports any double bookings of the tournament to Slack.
func GamesScheduledHandler(pub *publisher.Publisher, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received games scheduled message", "body", string(bodyBytes))

		var pubsubMsg pushMessage
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var event pubsub.ScheduleEvent
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode schedule event", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}

		if _, err := pub.ReportConflicts(r.Context(), event.TournamentID, IsDryRunFromContext(r)); err != nil {
			// Acknowledged regardless; a failed report is not redelivered.
			log.Error("Failed to report conflicts", "error", err, "tournamentID", event.TournamentID)
		}
		w.Write([]byte("OK"))
	}
}
