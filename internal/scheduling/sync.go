package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/identity"
)

// SyncExternalBookings blocks every free slot that clashes with a Playtomic
// booking on the same court. Courts without an external resource name are
// ignored.
func (e *engine) SyncExternalBookings(ctx context.Context, actor identity.Actor, tournamentID string, from time.Time) (SyncResult, error) {
	if err := requireAdmin(actor); err != nil {
		return SyncResult{}, err
	}
	if e.bookings == nil {
		return SyncResult{}, apperr.Validation(apperr.CodeIntegrationDisabled, "playtomic integration is not configured")
	}
	if _, err := club.FindTournament(ctx, e.db, tournamentID); err != nil {
		return SyncResult{}, err
	}
	courts, err := club.FindCourts(ctx, e.db, tournamentID)
	if err != nil {
		return SyncResult{}, err
	}
	resources := make(map[string]string, len(courts))
	for _, c := range courts {
		if c.ExternalResourceName != "" {
			resources[c.ID] = c.ExternalResourceName
		}
	}

	bookings, err := e.bookings.GetBookings(ctx, from)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	slots, err := e.ListSlots(ctx, SlotFilter{TournamentID: tournamentID, Status: SlotAvailable})
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Bookings: len(bookings), SlotIDs: []string{}}
	for _, s := range slots {
		resource, ok := resources[s.CourtID]
		if !ok {
			continue
		}
		for _, b := range bookings {
			if b.ResourceName != resource || !b.Overlaps(s.StartTime, s.EndTime) {
				continue
			}
			blocked, err := blockIfAvailable(ctx, e.db, s.ID)
			if err != nil {
				log.Error("Failed to block slot for booking", "error", err, "slotID", s.ID, "bookingID", b.ID)
				break
			}
			if blocked {
				result.Blocked++
				result.SlotIDs = append(result.SlotIDs, s.ID)
				log.Debug("Blocked slot for external booking", "slotID", s.ID, "bookingID", b.ID, "resource", resource)
			}
			break
		}
	}
	log.Info("Synced external bookings", "tournamentID", tournamentID, "bookings", result.Bookings, "blocked", result.Blocked)
	return result, nil
}
