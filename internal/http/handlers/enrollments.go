package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtside/internal/enrollment"
)

type enrollRequest struct {
	PlayerID           string `json:"player_id"`
	PreferredPartnerID string `json:"preferred_partner_id"`
}

type guestEnrollRequest struct {
	enrollment.GuestInfo
	PreferredPartnerID string `json:"preferred_partner_id"`
}

// EnrollHandler handles POST /sub-events/{id}/enrollments. The player
// defaults to the caller.
func EnrollHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r)
		req := enrollRequest{PlayerID: actor.PlayerID}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := reg.Enroll(r.Context(), actor, chi.URLParam(r, "id"), req.PlayerID, req.PreferredPartnerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// EnrollGuestHandler handles POST /sub-events/{id}/guest-enrollments.
func EnrollGuestHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req guestEnrollRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := reg.EnrollGuest(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"), req.GuestInfo, req.PreferredPartnerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// ListEnrollmentsHandler handles GET /enrollments with optional
// sub_event_id, tournament_id, player_id and status filters.
func ListEnrollmentsHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := reg.List(r.Context(), enrollment.Filter{
			SubEventID:   q.Get("sub_event_id"),
			TournamentID: q.Get("tournament_id"),
			PlayerID:     q.Get("player_id"),
			Status:       enrollment.Status(q.Get("status")),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func MyEnrollmentsHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := reg.ListMine(r.Context(), ActorFromContext(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetEnrollmentHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := reg.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func UpdateEnrollmentHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollment.UpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := reg.UpdateEnrollment(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func CancelEnrollmentHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := reg.CancelEnrollment(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func PromoteEnrollmentHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := reg.PromoteFromWaitingList(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// SubEventEnrollmentsHandler handles GET /sub-events/{id}/enrollments with
// an optional status filter.
func SubEventEnrollmentsHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := enrollment.Status(r.URL.Query().Get("status"))
		list, err := reg.ListBySubEvent(r.Context(), chi.URLParam(r, "id"), status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func WaitingListHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := reg.WaitingList(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func PartnerSeekersHandler(reg enrollment.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := reg.PartnerSeekers(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
