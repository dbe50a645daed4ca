package enrollment

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// New creates a Registry backed by db.
func New(db *sql.DB, clock clockwork.Clock, events pubsub.PubSubClient, m metrics.Metrics) Registry {
	return &registry{
		db:      db,
		clock:   clock,
		events:  events,
		metrics: m,
		locks:   newKeyedMutex(),
	}
}

// effects collects what happened inside a transaction so events and metrics
// are only emitted once it has committed.
type effects struct {
	admitted   []Status
	matches    int
	promotions int
	events     []event
}

type event struct {
	topic   pubsub.EventType
	payload pubsub.EnrollmentEvent
}

func (fx *effects) emit(topic pubsub.EventType, e *Enrollment, partnerID string, at time.Time) {
	fx.events = append(fx.events, event{topic: topic, payload: pubsub.EnrollmentEvent{
		EnrollmentID: e.ID,
		SubEventID:   e.SubEventID,
		PlayerID:     e.PlayerID,
		PartnerID:    partnerID,
		Status:       string(e.Status),
		OccurredAt:   at.Unix(),
	}})
}

func (r *registry) flush(fx *effects) {
	for _, s := range fx.admitted {
		r.metrics.IncEnrollments(string(s))
	}
	for i := 0; i < fx.matches; i++ {
		r.metrics.IncPartnerMatches()
	}
	for i := 0; i < fx.promotions; i++ {
		r.metrics.IncPromotions()
	}
	for _, ev := range fx.events {
		if err := r.events.SendMessage(ev.topic, ev.payload); err != nil {
			log.Error("Failed to publish enrollment event", "error", err, "topic", ev.topic, "enrollmentID", ev.payload.EnrollmentID)
		}
	}
}

func (r *registry) Enroll(ctx context.Context, actor identity.Actor, subEventID, playerID, preferredPartnerID string) (*Enrollment, error) {
	if playerID == "" {
		return nil, apperr.Validation(apperr.CodeInvalidArgument, "player id is required")
	}
	if !actor.Owns(playerID) && !actor.IsAdmin() {
		return nil, apperr.Forbidden("cannot enroll player %s", playerID)
	}
	if preferredPartnerID == playerID {
		return nil, apperr.Validation(apperr.CodeSelfPartner, "a player cannot partner with themselves")
	}

	unlock := r.locks.Lock(subEventID)
	defer unlock()

	var (
		e  *Enrollment
		fx effects
	)
	err := database.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		se, _, err := r.openSubEvent(ctx, tx, subEventID)
		if err != nil {
			return err
		}
		if _, err := club.FindPlayer(ctx, tx, playerID); err != nil {
			return err
		}
		if preferredPartnerID != "" {
			if _, err := club.FindPlayer(ctx, tx, preferredPartnerID); err != nil {
				return err
			}
		}
		existing, err := findActiveByPlayer(ctx, tx, subEventID, playerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Validation(apperr.CodeDuplicateEnrollment, "player %s is already enrolled in sub-event %s", playerID, subEventID)
		}

		now := r.clock.Now().UTC()
		e = &Enrollment{
			ID:                 uuid.NewString(),
			SubEventID:         se.ID,
			TournamentID:       se.TournamentID,
			PlayerID:           playerID,
			PreferredPartnerID: preferredPartnerID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return r.admitAndMatch(ctx, tx, se, e, &fx)
	})
	if err != nil {
		return nil, err
	}
	r.flush(&fx)
	log.Info("Enrolled player", "id", e.ID, "subEventID", subEventID, "playerID", playerID, "status", e.Status)
	return e, nil
}

func (r *registry) EnrollGuest(ctx context.Context, actor identity.Actor, subEventID string, guest GuestInfo, preferredPartnerID string) (*Enrollment, error) {
	if guest.Name == "" {
		return nil, apperr.Validation(apperr.CodeInvalidArgument, "guest name is required")
	}

	unlock := r.locks.Lock(subEventID)
	defer unlock()

	var (
		e  *Enrollment
		fx effects
	)
	err := database.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		se, t, err := r.openSubEvent(ctx, tx, subEventID)
		if err != nil {
			return err
		}
		if !t.AllowGuestEnrollment {
			return apperr.Validation(apperr.CodeGuestsNotAllowed, "tournament %s does not accept guest enrollments", t.ID)
		}
		if preferredPartnerID != "" {
			if _, err := club.FindPlayer(ctx, tx, preferredPartnerID); err != nil {
				return err
			}
		}

		now := r.clock.Now().UTC()
		e = &Enrollment{
			ID:                 uuid.NewString(),
			SubEventID:         se.ID,
			TournamentID:       se.TournamentID,
			IsGuest:            true,
			GuestName:          guest.Name,
			GuestEmail:         guest.Email,
			GuestPhone:         guest.Phone,
			PreferredPartnerID: preferredPartnerID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return r.admitAndMatch(ctx, tx, se, e, &fx)
	})
	if err != nil {
		return nil, err
	}
	r.flush(&fx)
	log.Info("Enrolled guest", "id", e.ID, "subEventID", subEventID, "actor", actor.PlayerID, "status", e.Status)
	return e, nil
}

// openSubEvent loads the sub-event and its tournament and checks that the
// tournament is accepting enrollments now.
func (r *registry) openSubEvent(ctx context.Context, q database.Querier, subEventID string) (*club.SubEvent, *club.Tournament, error) {
	se, err := club.FindSubEvent(ctx, q, subEventID)
	if err != nil {
		return nil, nil, err
	}
	t, err := club.FindTournament(ctx, q, se.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	if !t.EnrollmentOpen(r.clock.Now()) {
		return nil, nil, apperr.Validation(apperr.CodeEnrollmentClosed, "enrollment for tournament %s is closed", t.ID)
	}
	return se, t, nil
}

// admitAndMatch applies the capacity rule to a new enrollment, stores it and
// tries to pair it with its preferred partner.
func (r *registry) admitAndMatch(ctx context.Context, q database.Querier, se *club.SubEvent, e *Enrollment, fx *effects) error {
	effective, err := effectiveEntries(ctx, q, se)
	if err != nil {
		return err
	}
	switch {
	case se.MaxEntries == nil || effective < *se.MaxEntries:
		e.Status = admissionStatus(se)
	case se.WaitingListEnabled:
		last, err := maxWaitingPosition(ctx, q, se.ID)
		if err != nil {
			return err
		}
		pos := last + 1
		e.Status = StatusWaitingList
		e.WaitingListPosition = &pos
	default:
		return apperr.Validation(apperr.CodeCapacityExceeded, "sub-event %s is full", se.ID)
	}

	if err := insertEnrollment(ctx, q, e); err != nil {
		return err
	}
	fx.admitted = append(fx.admitted, e.Status)

	if se.GameType.IsDoubles() && e.Status != StatusWaitingList && e.PreferredPartnerID != "" {
		return r.tryMatchPartners(ctx, q, se, e, fx)
	}
	return nil
}

// tryMatchPartners confirms e and its preferred partner's enrollment when
// both prefer each other, are still pending and the pair fits within the
// sub-event's capacity. Anything else leaves both untouched.
func (r *registry) tryMatchPartners(ctx context.Context, q database.Querier, se *club.SubEvent, e *Enrollment, fx *effects) error {
	if !se.GameType.IsDoubles() || e.PlayerID == "" || e.PreferredPartnerID == "" || e.Status != StatusPending {
		return nil
	}
	partner, err := findActiveByPlayer(ctx, q, se.ID, e.PreferredPartnerID)
	if err != nil {
		return err
	}
	if partner == nil || partner.PreferredPartnerID != e.PlayerID || partner.Status != StatusPending {
		return nil
	}
	if se.MaxEntries != nil {
		confirmed, err := countConfirmed(ctx, q, se.ID)
		if err != nil {
			return err
		}
		if pairs(confirmed+2) > *se.MaxEntries {
			log.Debug("Mutual partners found but sub-event is full", "subEventID", se.ID, "playerID", e.PlayerID, "partnerID", partner.PlayerID)
			return nil
		}
	}

	now := r.clock.Now().UTC()
	e.Status, partner.Status = StatusConfirmed, StatusConfirmed
	e.ConfirmedPartnerID, partner.ConfirmedPartnerID = partner.PlayerID, e.PlayerID
	e.UpdatedAt, partner.UpdatedAt = now, now
	if err := saveEnrollment(ctx, q, e); err != nil {
		return err
	}
	if err := saveEnrollment(ctx, q, partner); err != nil {
		return err
	}

	fx.matches++
	fx.emit(pubsub.EventPartnersMatched, e, partner.PlayerID, now)
	log.Info("Matched doubles partners", "subEventID", se.ID, "playerID", e.PlayerID, "partnerID", partner.PlayerID)
	return nil
}

// breakPairing resets e's confirmed partner to PENDING and clears both
// sides of the link. The caller decides e's own new status and saves it.
func (r *registry) breakPairing(ctx context.Context, q database.Querier, e *Enrollment) error {
	if e.ConfirmedPartnerID == "" {
		return nil
	}
	partner, err := findActiveByPlayer(ctx, q, e.SubEventID, e.ConfirmedPartnerID)
	if err != nil {
		return err
	}
	if partner != nil && partner.ConfirmedPartnerID == e.PlayerID {
		partner.Status = StatusPending
		partner.ConfirmedPartnerID = ""
		partner.UpdatedAt = r.clock.Now().UTC()
		if err := saveEnrollment(ctx, q, partner); err != nil {
			return err
		}
	}
	log.Info("Broke doubles pairing", "enrollmentID", e.ID, "playerID", e.PlayerID, "partnerID", e.ConfirmedPartnerID)
	e.ConfirmedPartnerID = ""
	return nil
}

func (r *registry) UpdateEnrollment(ctx context.Context, actor identity.Actor, id string, req UpdateRequest) (*Enrollment, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(current.SubEventID)
	defer unlock()

	var (
		e  *Enrollment
		fx effects
	)
	err = database.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		e, err = findEnrollment(ctx, tx, id)
		if err != nil {
			return err
		}
		if e.Status.Terminal() {
			return apperr.Validation(apperr.CodeEnrollmentTerminal, "enrollment %s is %s", id, e.Status)
		}
		se, err := club.FindSubEvent(ctx, tx, e.SubEventID)
		if err != nil {
			return err
		}

		if req.PreferredPartnerID != nil {
			pref := *req.PreferredPartnerID
			if pref != "" {
				if pref == e.PlayerID {
					return apperr.Validation(apperr.CodeSelfPartner, "a player cannot partner with themselves")
				}
				if _, err := club.FindPlayer(ctx, tx, pref); err != nil {
					return err
				}
			}
			if e.ConfirmedPartnerID != "" && e.ConfirmedPartnerID != pref {
				if err := r.breakPairing(ctx, tx, e); err != nil {
					return err
				}
				e.Status = StatusPending
			}
			e.PreferredPartnerID = pref
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		e.UpdatedAt = r.clock.Now().UTC()
		if err := saveEnrollment(ctx, tx, e); err != nil {
			return err
		}
		return r.tryMatchPartners(ctx, tx, se, e, &fx)
	})
	if err != nil {
		return nil, err
	}
	r.flush(&fx)
	log.Info("Updated enrollment", "id", e.ID, "status", e.Status, "preferredPartnerID", e.PreferredPartnerID)
	return e, nil
}

func (r *registry) CancelEnrollment(ctx context.Context, actor identity.Actor, id string) (*Enrollment, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current); err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(current.SubEventID)
	defer unlock()

	var (
		e  *Enrollment
		fx effects
	)
	err = database.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		e, err = findEnrollment(ctx, tx, id)
		if err != nil {
			return err
		}
		if e.Status.Terminal() {
			return apperr.Validation(apperr.CodeEnrollmentTerminal, "enrollment %s is already %s", id, e.Status)
		}
		se, err := club.FindSubEvent(ctx, tx, e.SubEventID)
		if err != nil {
			return err
		}

		wasWaiting := e.Status == StatusWaitingList
		formerPartner := e.ConfirmedPartnerID
		if err := r.breakPairing(ctx, tx, e); err != nil {
			return err
		}
		if actor.Owns(e.PlayerID) {
			e.Status = StatusWithdrawn
		} else {
			e.Status = StatusCancelled
		}
		e.WaitingListPosition = nil
		e.UpdatedAt = r.clock.Now().UTC()
		if err := saveEnrollment(ctx, tx, e); err != nil {
			return err
		}
		fx.emit(pubsub.EventEnrollmentCancel, e, formerPartner, e.UpdatedAt)

		if wasWaiting {
			if err := renumberWaitingList(ctx, tx, se.ID); err != nil {
				return err
			}
		}
		if se.WaitingListEnabled {
			if _, err := r.tryPromoteFromWaitingList(ctx, tx, se, &fx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.flush(&fx)
	log.Info("Cancelled enrollment", "id", e.ID, "status", e.Status, "actor", actor.PlayerID)
	return e, nil
}

// tryPromoteFromWaitingList promotes the head of the waiting list when the
// sub-event has room. It returns the promoted enrollment, if any.
func (r *registry) tryPromoteFromWaitingList(ctx context.Context, q database.Querier, se *club.SubEvent, fx *effects) (*Enrollment, error) {
	if se.MaxEntries != nil {
		effective, err := effectiveEntries(ctx, q, se)
		if err != nil {
			return nil, err
		}
		if effective >= *se.MaxEntries {
			return nil, nil
		}
	}
	waiting, err := listEnrollments(ctx, q, Filter{SubEventID: se.ID, Status: StatusWaitingList},
		"waiting_list_position, created_at, rowid")
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	head := waiting[0]
	if err := r.promote(ctx, q, se, &head, fx); err != nil {
		return nil, err
	}
	return &head, nil
}

// promote moves e off the waiting list as PENDING, renumbers the rest and
// tries to pair it. Only a capacity-checked partner match confirms it.
func (r *registry) promote(ctx context.Context, q database.Querier, se *club.SubEvent, e *Enrollment, fx *effects) error {
	e.Status = StatusPending
	e.WaitingListPosition = nil
	e.UpdatedAt = r.clock.Now().UTC()
	if err := saveEnrollment(ctx, q, e); err != nil {
		return err
	}
	if err := renumberWaitingList(ctx, q, se.ID); err != nil {
		return err
	}
	fx.promotions++
	fx.emit(pubsub.EventEnrollmentPromote, e, "", e.UpdatedAt)
	log.Info("Promoted enrollment from waiting list", "id", e.ID, "subEventID", se.ID, "status", e.Status)
	return r.tryMatchPartners(ctx, q, se, e, fx)
}

func (r *registry) PromoteFromWaitingList(ctx context.Context, actor identity.Actor, id string) (*Enrollment, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("promoting from the waiting list requires %s", identity.PermEditAnyTournament)
	}
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.Lock(current.SubEventID)
	defer unlock()

	var (
		e  *Enrollment
		fx effects
	)
	err = database.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		e, err = findEnrollment(ctx, tx, id)
		if err != nil {
			return err
		}
		if e.Status != StatusWaitingList {
			return apperr.Validation(apperr.CodeNotOnWaitingList, "enrollment %s is %s, not on the waiting list", id, e.Status)
		}
		se, err := club.FindSubEvent(ctx, tx, e.SubEventID)
		if err != nil {
			return err
		}
		return r.promote(ctx, tx, se, e, &fx)
	})
	if err != nil {
		return nil, err
	}
	r.flush(&fx)
	return e, nil
}

func (r *registry) Get(ctx context.Context, id string) (*Enrollment, error) {
	return findEnrollment(ctx, r.db, id)
}

func (r *registry) List(ctx context.Context, filter Filter) ([]Enrollment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidArgument, "unknown status %q", filter.Status)
	}
	return listEnrollments(ctx, r.db, filter, "")
}

func (r *registry) ListMine(ctx context.Context, actor identity.Actor) ([]Enrollment, error) {
	if actor.PlayerID == "" {
		return []Enrollment{}, nil
	}
	return listEnrollments(ctx, r.db, Filter{PlayerID: actor.PlayerID}, "")
}

func (r *registry) ListBySubEvent(ctx context.Context, subEventID string, status Status) ([]Enrollment, error) {
	if _, err := club.FindSubEvent(ctx, r.db, subEventID); err != nil {
		return nil, err
	}
	return r.List(ctx, Filter{SubEventID: subEventID, Status: status})
}

func (r *registry) WaitingList(ctx context.Context, subEventID string) ([]Enrollment, error) {
	if _, err := club.FindSubEvent(ctx, r.db, subEventID); err != nil {
		return nil, err
	}
	return listEnrollments(ctx, r.db, Filter{SubEventID: subEventID, Status: StatusWaitingList},
		"waiting_list_position, created_at, rowid")
}

// PartnerSeekers lists pending doubles entries that have no confirmed partner.
func (r *registry) PartnerSeekers(ctx context.Context, subEventID string) ([]Enrollment, error) {
	se, err := club.FindSubEvent(ctx, r.db, subEventID)
	if err != nil {
		return nil, err
	}
	seekers := []Enrollment{}
	if !se.GameType.IsDoubles() {
		return seekers, nil
	}
	pending, err := listEnrollments(ctx, r.db, Filter{SubEventID: subEventID, Status: StatusPending}, "")
	if err != nil {
		return nil, err
	}
	for _, e := range pending {
		if e.ConfirmedPartnerID == "" {
			seekers = append(seekers, e)
		}
	}
	return seekers, nil
}

func authorize(actor identity.Actor, e *Enrollment) error {
	if actor.IsAdmin() || (e.PlayerID != "" && actor.Owns(e.PlayerID)) {
		return nil
	}
	return apperr.Forbidden("enrollment %s belongs to another player", e.ID)
}

func admissionStatus(se *club.SubEvent) Status {
	if se.GameType.IsDoubles() {
		return StatusPending
	}
	return StatusConfirmed
}

func effectiveEntries(ctx context.Context, q database.Querier, se *club.SubEvent) (int, error) {
	confirmed, err := countConfirmed(ctx, q, se.ID)
	if err != nil {
		return 0, err
	}
	if se.GameType.IsDoubles() {
		return pairs(confirmed), nil
	}
	return confirmed, nil
}

// pairs is the number of doubles entries n confirmed players occupy.
func pairs(n int) int {
	return (n + 1) / 2
}
