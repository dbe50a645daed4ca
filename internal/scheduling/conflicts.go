package scheduling

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mauv0809/courtside/internal/club"
)

// DetectScheduleConflicts reports every pair of consecutive games of a
// player whose slots overlap. Rest time is not considered.
func (e *engine) DetectScheduleConflicts(ctx context.Context, tournamentID string) ([]Conflict, error) {
	if _, err := club.FindTournament(ctx, e.db, tournamentID); err != nil {
		return nil, err
	}
	bookings, err := occupiedBookings(ctx, e.db, tournamentID)
	if err != nil {
		return nil, err
	}
	return overlaps(bookings), nil
}

func overlaps(bookings []booking) []Conflict {
	byPlayer := make(map[string][]booking)
	for _, b := range bookings {
		byPlayer[b.playerID] = append(byPlayer[b.playerID], b)
	}
	players := make([]string, 0, len(byPlayer))
	for p := range byPlayer {
		players = append(players, p)
	}
	slices.Sort(players)

	conflicts := []Conflict{}
	for _, p := range players {
		list := byPlayer[p]
		slices.SortStableFunc(list, func(a, b booking) int {
			if c := a.slot.StartTime.Compare(b.slot.StartTime); c != 0 {
				return c
			}
			return a.slot.Order - b.slot.Order
		})
		for i := 0; i+1 < len(list); i++ {
			cur, next := list[i], list[i+1]
			if !cur.slot.EndTime.After(next.slot.StartTime) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				PlayerID:    p,
				GameID:      cur.gameID,
				OtherGameID: next.gameID,
				SlotID:      cur.slot.ID,
				OtherSlotID: next.slot.ID,
				Message: fmt.Sprintf("player %s is booked from %s to %s and again from %s",
					p, cur.slot.StartTime.Format(time.RFC3339), cur.slot.EndTime.Format(time.RFC3339),
					next.slot.StartTime.Format(time.RFC3339)),
			})
		}
	}
	return conflicts
}
