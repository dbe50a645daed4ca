package scheduling

import (
	"context"
	"time"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/identity"
)

// Engine manages schedule slots and places games into them. Mutations
// require the organizer permission.
type Engine interface {
	GenerateTimeSlots(ctx context.Context, actor identity.Actor, req GenerateRequest) (GenerateResult, error)
	CreateScheduleSlot(ctx context.Context, actor identity.Actor, req CreateSlotRequest) (*Slot, error)
	BlockScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error)
	UnblockScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error)
	DeleteScheduleSlot(ctx context.Context, actor identity.Actor, slotID string) error
	StartSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error)

	// AssignGameToSlot is a manual override and skips rest-time checks.
	AssignGameToSlot(ctx context.Context, actor identity.Actor, slotID, gameID string) (*Slot, error)
	RemoveGameFromSlot(ctx context.Context, actor identity.Actor, slotID string) (*Slot, error)

	ScheduleGames(ctx context.Context, actor identity.Actor, req ScheduleRequest) (ScheduleResult, error)
	DetectScheduleConflicts(ctx context.Context, tournamentID string) ([]Conflict, error)
	SyncExternalBookings(ctx context.Context, actor identity.Actor, tournamentID string, from time.Time) (SyncResult, error)

	GetSlot(ctx context.Context, slotID string) (*Slot, error)
	ListSlots(ctx context.Context, filter SlotFilter) ([]Slot, error)
	AvailableSlots(ctx context.Context, tournamentID string) ([]Slot, error)
	UnscheduledGames(ctx context.Context, tournamentID string, drawIDs []string) ([]club.Game, error)
}
