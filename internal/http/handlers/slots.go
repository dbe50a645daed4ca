package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/scheduling"
)

// GenerateSlotsHandler handles POST /tournaments/{id}/slots/generate.
func GenerateSlotsHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduling.GenerateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		req.TournamentID = chi.URLParam(r, "id")
		res, err := engine.GenerateTimeSlots(r.Context(), ActorFromContext(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// CreateSlotHandler handles POST /tournaments/{id}/slots.
func CreateSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduling.CreateSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		req.TournamentID = chi.URLParam(r, "id")
		s, err := engine.CreateScheduleSlot(r.Context(), ActorFromContext(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// ListSlotsHandler handles GET /tournaments/{id}/slots with optional
// court_id, date and status filters.
func ListSlotsHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		slots, err := engine.ListSlots(r.Context(), scheduling.SlotFilter{
			TournamentID: chi.URLParam(r, "id"),
			CourtID:      q.Get("court_id"),
			Date:         q.Get("date"),
			Status:       scheduling.SlotStatus(q.Get("status")),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func AvailableSlotsHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := engine.AvailableSlots(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

// UnscheduledGamesHandler handles GET /tournaments/{id}/games/unscheduled
// with an optional comma separated draw_ids parameter.
func UnscheduledGamesHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := engine.UnscheduledGames(r.Context(), chi.URLParam(r, "id"), splitList(r.URL.Query().Get("draw_ids")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

// ScheduleGamesHandler handles POST /tournaments/{id}/schedule.
func ScheduleGamesHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduling.ScheduleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		req.TournamentID = chi.URLParam(r, "id")
		res, err := engine.ScheduleGames(r.Context(), ActorFromContext(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type syncRequest struct {
	From *time.Time `json:"from"`
}

// SyncBookingsHandler handles POST /tournaments/{id}/sync-bookings. Without
// a from time, bookings from the start of today are fetched.
func SyncBookingsHandler(engine scheduling.Engine, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		from := now().Truncate(24 * time.Hour)
		if req.From != nil {
			from = *req.From
		}
		res, err := engine.SyncExternalBookings(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"), from)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func GetSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.GetSlot(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

type assignRequest struct {
	GameID string `json:"game_id"`
}

func AssignGameHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.GameID == "" {
			writeError(w, r, apperr.Validation(apperr.CodeInvalidArgument, "game_id is required"))
			return
		}
		s, err := engine.AssignGameToSlot(r.Context(), ActorFromContext(r), chi.URLParam(r, "id"), req.GameID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// slotAction adapts the single-slot mutations that only need the slot id.
func slotAction(fn func(r *http.Request, actor identity.Actor, slotID string) (*scheduling.Slot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := fn(r, ActorFromContext(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func RemoveGameHandler(engine scheduling.Engine) http.HandlerFunc {
	return slotAction(func(r *http.Request, actor identity.Actor, slotID string) (*scheduling.Slot, error) {
		return engine.RemoveGameFromSlot(r.Context(), actor, slotID)
	})
}

func BlockSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return slotAction(func(r *http.Request, actor identity.Actor, slotID string) (*scheduling.Slot, error) {
		return engine.BlockScheduleSlot(r.Context(), actor, slotID)
	})
}

func UnblockSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return slotAction(func(r *http.Request, actor identity.Actor, slotID string) (*scheduling.Slot, error) {
		return engine.UnblockScheduleSlot(r.Context(), actor, slotID)
	})
}

func StartSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return slotAction(func(r *http.Request, actor identity.Actor, slotID string) (*scheduling.Slot, error) {
		return engine.StartSlot(r.Context(), actor, slotID)
	})
}

func DeleteSlotHandler(engine scheduling.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.DeleteScheduleSlot(r.Context(), ActorFromContext(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
