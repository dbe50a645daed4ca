package enrollment

import (
	"context"

	"github.com/mauv0809/courtside/internal/identity"
)

// Registry admits players and guests into sub-events, pairs doubles
// partners and maintains waiting lists.
type Registry interface {
	Enroll(ctx context.Context, actor identity.Actor, subEventID, playerID, preferredPartnerID string) (*Enrollment, error)
	EnrollGuest(ctx context.Context, actor identity.Actor, subEventID string, guest GuestInfo, preferredPartnerID string) (*Enrollment, error)
	UpdateEnrollment(ctx context.Context, actor identity.Actor, id string, req UpdateRequest) (*Enrollment, error)
	CancelEnrollment(ctx context.Context, actor identity.Actor, id string) (*Enrollment, error)
	PromoteFromWaitingList(ctx context.Context, actor identity.Actor, id string) (*Enrollment, error)

	Get(ctx context.Context, id string) (*Enrollment, error)
	List(ctx context.Context, filter Filter) ([]Enrollment, error)
	ListMine(ctx context.Context, actor identity.Actor) ([]Enrollment, error)
	ListBySubEvent(ctx context.Context, subEventID string, status Status) ([]Enrollment, error)
	WaitingList(ctx context.Context, subEventID string) ([]Enrollment, error)
	PartnerSeekers(ctx context.Context, subEventID string) ([]Enrollment, error)
}
