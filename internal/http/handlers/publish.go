package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtside/internal/publisher"
)

// PublishScheduleHandler handles POST /tournaments/{id}/publish. With
// dry_run=true the announcement is only logged.
func PublishScheduleHandler(pub *publisher.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := pub.PublishSchedule(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"), IsDryRunFromContext(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ConflictsHandler handles GET /tournaments/{id}/conflicts. Adding
// notify=true also posts the report to Slack.
func ConflictsHandler(pub *publisher.Publisher, detector publisher.ConflictDetector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID := chi.URLParam(r, "id")
		if r.URL.Query().Get("notify") == "true" {
			conflicts, err := pub.ReportConflicts(r.Context(), tournamentID, IsDryRunFromContext(r))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, conflicts)
			return
		}
		conflicts, err := detector.DetectScheduleConflicts(r.Context(), tournamentID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, conflicts)
	}
}
