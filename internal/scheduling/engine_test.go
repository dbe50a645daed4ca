package scheduling_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = identity.Admin("organizer")

type fixture struct {
	engine     scheduling.Engine
	store      club.ClubStore
	db         *sql.DB
	clock      *clockwork.FakeClock
	events     *pubsub.MockPubSubClient
	metrics    *metrics.Mock
	bookings   *playtomic.MockClient
	tournament *club.Tournament
	draw       *club.Draw
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	ctx := context.Background()
	store := club.New(db)
	tour := &club.Tournament{Name: "Winter Open", Phase: club.PhaseScheduling}
	require.NoError(t, store.CreateTournament(ctx, tour))
	se := &club.SubEvent{TournamentID: tour.ID, Name: "Men's singles", GameType: club.GameTypeSingles}
	require.NoError(t, store.CreateSubEvent(ctx, se))
	draw := &club.Draw{SubEventID: se.ID, Name: "Main draw"}
	require.NoError(t, store.CreateDraw(ctx, draw))

	f := &fixture{
		store:      store,
		db:         db,
		clock:      clockwork.NewFakeClockAt(time.Date(2023, 12, 20, 10, 0, 0, 0, time.UTC)),
		events:     pubsub.NewMock(),
		metrics:    metrics.NewMock(),
		bookings:   playtomic.NewMockClient(),
		tournament: tour,
		draw:       draw,
	}
	f.engine = scheduling.New(db, f.clock, time.UTC, f.bookings, f.events, f.metrics)
	return f
}

func (f *fixture) court(t *testing.T, name, resource string) *club.Court {
	t.Helper()
	c := &club.Court{TournamentID: f.tournament.ID, Name: name, ExternalResourceName: resource}
	require.NoError(t, f.store.CreateCourt(context.Background(), c))
	return c
}

// game creates a game in the fixture draw, creating its players as needed.
func (f *fixture) game(t *testing.T, order int, players ...string) *club.Game {
	t.Helper()
	ctx := context.Background()
	g := &club.Game{DrawID: f.draw.ID, Order: order}
	for i, p := range players {
		if _, err := f.store.GetPlayer(ctx, p); errors.Is(err, apperr.ErrNotFound) {
			require.NoError(t, f.store.CreatePlayer(ctx, &club.Player{ID: p, Name: "Player " + p}))
		}
		g.Players = append(g.Players, club.GamePlayer{PlayerID: p, Team: i%2 + 1})
	}
	require.NoError(t, f.store.CreateGame(ctx, g))
	return g
}

// slot creates a slot on 2024-01-01 at hh:mm UTC.
func (f *fixture) slot(t *testing.T, courtID, at string, minutes int) *scheduling.Slot {
	t.Helper()
	clock, err := time.Parse("15:04", at)
	require.NoError(t, err)
	start := time.Date(2024, 1, 1, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	s, err := f.engine.CreateScheduleSlot(context.Background(), admin, scheduling.CreateSlotRequest{
		TournamentID: f.tournament.ID,
		CourtID:      courtID,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(minutes) * time.Minute),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) getSlot(t *testing.T, id string) *scheduling.Slot {
	t.Helper()
	s, err := f.engine.GetSlot(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) getGame(t *testing.T, id string) *club.Game {
	t.Helper()
	g, err := f.store.GetGame(context.Background(), id)
	require.NoError(t, err)
	return g
}

func hm(s scheduling.Slot) string {
	return s.StartTime.Format("15:04") + "-" + s.EndTime.Format("15:04")
}

func TestGenerateTimeSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("extends an existing grid without duplicates", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		req := scheduling.GenerateRequest{
			TournamentID:        f.tournament.ID,
			CourtIDs:            []string{c1.ID},
			Dates:               []string{"2024-01-01"},
			StartTime:           "09:00",
			EndTime:             "10:00",
			SlotDurationMinutes: 30,
		}

		first, err := f.engine.GenerateTimeSlots(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Created)
		assert.Equal(t, 0, first.Skipped)
		require.Len(t, first.Slots, 2)
		assert.Equal(t, "09:00-09:30", hm(first.Slots[0]))
		assert.Equal(t, "09:30-10:00", hm(first.Slots[1]))

		req.EndTime = "10:15"
		second, err := f.engine.GenerateTimeSlots(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Created)
		assert.Equal(t, 2, second.Skipped)
		require.Len(t, second.Slots, 1)
		assert.Equal(t, "10:00-10:30", hm(second.Slots[0]))

		all, err := f.engine.ListSlots(ctx, scheduling.SlotFilter{TournamentID: f.tournament.ID})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, s := range all {
			assert.Equal(t, i+1, s.Order)
			assert.Equal(t, scheduling.SlotAvailable, s.Status)
		}
		assert.Equal(t, 3, f.metrics.SlotsGenerated())
	})

	t.Run("is idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.court(t, "C1", "")
		f.court(t, "C2", "")
		req := scheduling.GenerateRequest{
			TournamentID:        f.tournament.ID,
			Dates:               []string{"2024-01-01", "2024-01-02"},
			StartTime:           "09:00",
			EndTime:             "12:00",
			SlotDurationMinutes: 45,
			BreakMinutes:        15,
		}
		first, err := f.engine.GenerateTimeSlots(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, 12, first.Created)

		second, err := f.engine.GenerateTimeSlots(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Created)
		assert.Equal(t, 12, second.Skipped)

		all, err := f.engine.ListSlots(ctx, scheduling.SlotFilter{TournamentID: f.tournament.ID})
		require.NoError(t, err)
		assert.Len(t, all, 12)

		day2, err := f.engine.ListSlots(ctx, scheduling.SlotFilter{TournamentID: f.tournament.ID, Date: "2024-01-02"})
		require.NoError(t, err)
		assert.Len(t, day2, 6)
	})

	t.Run("reads wall clock times in the configured zone", func(t *testing.T) {
		f := newFixture(t)
		loc, err := time.LoadLocation("Europe/Copenhagen")
		require.NoError(t, err)
		engine := scheduling.New(f.db, f.clock, loc, nil, f.events, f.metrics)
		c1 := f.court(t, "C1", "")

		res, err := engine.GenerateTimeSlots(ctx, admin, scheduling.GenerateRequest{
			TournamentID:        f.tournament.ID,
			CourtIDs:            []string{c1.ID},
			Dates:               []string{"2024-01-01"},
			StartTime:           "09:00",
			EndTime:             "09:30",
			SlotDurationMinutes: 30,
		})
		require.NoError(t, err)
		require.Len(t, res.Slots, 1)
		assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), res.Slots[0].StartTime)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		other := &club.Tournament{Name: "Other"}
		require.NoError(t, f.store.CreateTournament(ctx, other))
		foreign := &club.Court{TournamentID: other.ID, Name: "Foreign"}
		require.NoError(t, f.store.CreateCourt(ctx, foreign))

		valid := func() scheduling.GenerateRequest {
			return scheduling.GenerateRequest{
				TournamentID:        f.tournament.ID,
				CourtIDs:            []string{c1.ID},
				Dates:               []string{"2024-01-01"},
				StartTime:           "09:00",
				EndTime:             "10:00",
				SlotDurationMinutes: 30,
			}
		}
		tests := []struct {
			name   string
			actor  identity.Actor
			modify func(r *scheduling.GenerateRequest)
			want   error
		}{
			{"not an organizer", identity.Player("p1"), func(r *scheduling.GenerateRequest) {}, apperr.ErrForbidden},
			{"zero duration", admin, func(r *scheduling.GenerateRequest) { r.SlotDurationMinutes = 0 }, apperr.ErrValidation},
			{"negative break", admin, func(r *scheduling.GenerateRequest) { r.BreakMinutes = -5 }, apperr.ErrValidation},
			{"no dates", admin, func(r *scheduling.GenerateRequest) { r.Dates = nil }, apperr.ErrValidation},
			{"bad date", admin, func(r *scheduling.GenerateRequest) { r.Dates = []string{"01/01/2024"} }, apperr.ErrValidation},
			{"bad time", admin, func(r *scheduling.GenerateRequest) { r.StartTime = "9am" }, apperr.ErrValidation},
			{"end before start", admin, func(r *scheduling.GenerateRequest) { r.EndTime = "08:00" }, apperr.ErrValidation},
			{"unknown tournament", admin, func(r *scheduling.GenerateRequest) { r.TournamentID = "nope" }, apperr.ErrNotFound},
			{"unknown court", admin, func(r *scheduling.GenerateRequest) { r.CourtIDs = []string{"nope"} }, apperr.ErrNotFound},
			{"court of another tournament", admin, func(r *scheduling.GenerateRequest) { r.CourtIDs = []string{foreign.ID} },
				&apperr.Error{Code: apperr.CodeSlotOutsideTournament}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := valid()
				tt.modify(&req)
				_, err := f.engine.GenerateTimeSlots(ctx, tt.actor, req)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestCreateScheduleSlotRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	f.slot(t, c1.ID, "09:00", 30)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := f.engine.CreateScheduleSlot(context.Background(), admin, scheduling.CreateSlotRequest{
		TournamentID: f.tournament.ID, CourtID: c1.ID, StartTime: start, EndTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.engine.CreateScheduleSlot(context.Background(), admin, scheduling.CreateSlotRequest{
		TournamentID: f.tournament.ID, CourtID: c1.ID, StartTime: start, EndTime: start,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssignGameToSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the slot onto the game", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		s := f.slot(t, c1.ID, "09:00", 30)
		g := f.game(t, 1, "a", "b")

		got, err := f.engine.AssignGameToSlot(ctx, admin, s.ID, g.ID)
		require.NoError(t, err)
		assert.Equal(t, scheduling.SlotScheduled, got.Status)
		assert.Equal(t, g.ID, got.GameID)

		game := f.getGame(t, g.ID)
		require.NotNil(t, game.ScheduledTime)
		assert.True(t, s.StartTime.Equal(*game.ScheduledTime))
		assert.Equal(t, c1.ID, game.CourtID)
		assert.Equal(t, s.ID, game.ScheduleSlotID)
	})

	t.Run("occupied slot is left untouched", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		s := f.slot(t, c1.ID, "09:00", 30)
		g1 := f.game(t, 1, "a", "b")
		g2 := f.game(t, 2, "c", "d")
		_, err := f.engine.AssignGameToSlot(ctx, admin, s.ID, g1.ID)
		require.NoError(t, err)

		_, err = f.engine.AssignGameToSlot(ctx, admin, s.ID, g2.ID)
		assert.ErrorIs(t, err, apperr.ErrSlotOccupied)

		slot := f.getSlot(t, s.ID)
		assert.Equal(t, scheduling.SlotScheduled, slot.Status)
		assert.Equal(t, g1.ID, slot.GameID)
		assert.Equal(t, s.ID, f.getGame(t, g1.ID).ScheduleSlotID)
		second := f.getGame(t, g2.ID)
		assert.Empty(t, second.ScheduleSlotID)
		assert.Nil(t, second.ScheduledTime)
	})

	t.Run("moves a game between slots", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		c2 := f.court(t, "C2", "")
		s1 := f.slot(t, c1.ID, "09:00", 30)
		s2 := f.slot(t, c2.ID, "11:00", 30)
		g := f.game(t, 1, "a", "b")

		_, err := f.engine.AssignGameToSlot(ctx, admin, s1.ID, g.ID)
		require.NoError(t, err)
		_, err = f.engine.AssignGameToSlot(ctx, admin, s2.ID, g.ID)
		require.NoError(t, err)

		old := f.getSlot(t, s1.ID)
		assert.Equal(t, scheduling.SlotAvailable, old.Status)
		assert.Empty(t, old.GameID)
		game := f.getGame(t, g.ID)
		assert.Equal(t, s2.ID, game.ScheduleSlotID)
		assert.Equal(t, c2.ID, game.CourtID)
	})

	t.Run("cannot move a game that is being played", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		s1 := f.slot(t, c1.ID, "09:00", 30)
		s2 := f.slot(t, c1.ID, "10:00", 30)
		g := f.game(t, 1, "a", "b")
		_, err := f.engine.AssignGameToSlot(ctx, admin, s1.ID, g.ID)
		require.NoError(t, err)
		_, err = f.engine.StartSlot(ctx, admin, s1.ID)
		require.NoError(t, err)

		_, err = f.engine.AssignGameToSlot(ctx, admin, s2.ID, g.ID)
		assert.ErrorIs(t, err, apperr.ErrSlotInProgress)
		assert.Equal(t, scheduling.SlotAvailable, f.getSlot(t, s2.ID).Status)
	})

	t.Run("guards", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		blocked := f.slot(t, c1.ID, "09:00", 30)
		free := f.slot(t, c1.ID, "10:00", 30)
		g := f.game(t, 1, "a", "b")
		_, err := f.engine.BlockScheduleSlot(ctx, admin, blocked.ID)
		require.NoError(t, err)

		_, err = f.engine.AssignGameToSlot(ctx, admin, blocked.ID, g.ID)
		assert.ErrorIs(t, err, apperr.ErrSlotBlocked)
		_, err = f.engine.AssignGameToSlot(ctx, admin, free.ID, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.engine.AssignGameToSlot(ctx, admin, "missing", g.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.engine.AssignGameToSlot(ctx, identity.Player("a"), free.ID, g.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestSlotLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	s := f.slot(t, c1.ID, "09:00", 30)
	g := f.game(t, 1, "a", "b")

	_, err := f.engine.UnblockScheduleSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, &apperr.Error{Code: apperr.CodeSlotNotBlocked})
	_, err = f.engine.StartSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, &apperr.Error{Code: apperr.CodeSlotNotScheduled})
	_, err = f.engine.RemoveGameFromSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, &apperr.Error{Code: apperr.CodeSlotNotScheduled})

	got, err := f.engine.BlockScheduleSlot(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.SlotBlocked, got.Status)
	got, err = f.engine.BlockScheduleSlot(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.SlotBlocked, got.Status)
	got, err = f.engine.UnblockScheduleSlot(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.SlotAvailable, got.Status)

	_, err = f.engine.AssignGameToSlot(ctx, admin, s.ID, g.ID)
	require.NoError(t, err)
	_, err = f.engine.BlockScheduleSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, apperr.ErrSlotOccupied)
	err = f.engine.DeleteScheduleSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, apperr.ErrSlotOccupied)

	got, err = f.engine.StartSlot(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.SlotInProgress, got.Status)
	_, err = f.engine.RemoveGameFromSlot(ctx, admin, s.ID)
	assert.ErrorIs(t, err, apperr.ErrSlotInProgress)
	assert.Equal(t, g.ID, f.getSlot(t, s.ID).GameID)

	other := f.slot(t, c1.ID, "10:00", 30)
	g2 := f.game(t, 2, "c", "d")
	_, err = f.engine.AssignGameToSlot(ctx, admin, other.ID, g2.ID)
	require.NoError(t, err)
	got, err = f.engine.RemoveGameFromSlot(ctx, admin, other.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduling.SlotAvailable, got.Status)
	assert.Empty(t, got.GameID)
	game := f.getGame(t, g2.ID)
	assert.Empty(t, game.ScheduleSlotID)
	assert.Empty(t, game.CourtID)
	assert.Nil(t, game.ScheduledTime)

	require.NoError(t, f.engine.DeleteScheduleSlot(ctx, admin, other.ID))
	_, err = f.engine.GetSlot(ctx, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScheduleGamesRespectsRest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	early := f.slot(t, c1.ID, "08:00", 30)
	s1 := f.slot(t, c1.ID, "09:00", 30)
	s2 := f.slot(t, c1.ID, "09:40", 30)

	// g0 is the third game sharing x; it already holds the early slot, so
	// only s1 and s2 (10 minutes apart) are left for g1 and g2.
	g0 := f.game(t, 1, "x", "a")
	g1 := f.game(t, 2, "x", "b")
	g2 := f.game(t, 3, "x", "c")
	_, err := f.engine.AssignGameToSlot(ctx, admin, early.ID, g0.ID)
	require.NoError(t, err)

	res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{
		TournamentID:   f.tournament.ID,
		MinRestMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "x", c.PlayerID)
	assert.Equal(t, g2.ID, c.GameID)
	assert.Equal(t, g1.ID, c.OtherGameID)
	assert.Equal(t, s2.ID, c.SlotID)
	assert.Equal(t, s1.ID, c.OtherSlotID)
	assert.NotEmpty(t, c.Message)

	assert.Equal(t, s1.ID, f.getGame(t, g1.ID).ScheduleSlotID)
	assert.Equal(t, scheduling.SlotAvailable, f.getSlot(t, s2.ID).Status)

	assert.Equal(t, 1, f.metrics.GamesScheduled())
	assert.Equal(t, 1, f.metrics.GamesSkipped())
	assert.Equal(t, 1, f.metrics.ConflictsDetected())
	assert.Equal(t, 1, f.metrics.SchedulingRuns())
	require.Equal(t, []pubsub.EventType{pubsub.EventGamesScheduled}, f.events.Topics())
	ev := f.events.SendMessageCalls[0].Data.(pubsub.ScheduleEvent)
	assert.Equal(t, pubsub.ScheduleEvent{
		TournamentID: f.tournament.ID, Scheduled: 1, Skipped: 1, Conflicts: 1, OccurredAt: f.clock.Now().Unix(),
	}, ev)
}

func TestScheduleGamesReportsPlayersWhenSlotsRunOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	s1 := f.slot(t, c1.ID, "09:00", 30)

	g1 := f.game(t, 1, "x", "a")
	g2 := f.game(t, 2, "x", "b")

	res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{
		TournamentID:   f.tournament.ID,
		MinRestMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "x", c.PlayerID)
	assert.Equal(t, g2.ID, c.GameID)
	assert.Equal(t, g1.ID, c.OtherGameID)
	assert.Equal(t, s1.ID, c.OtherSlotID)
	assert.Empty(t, c.SlotID)
	assert.Contains(t, c.Message, "no remaining slot")
	assert.Equal(t, 1, f.metrics.ConflictsDetected())
}

func TestScheduleGamesEmptyInputs(t *testing.T) {
	ctx := context.Background()

	t.Run("no games", func(t *testing.T) {
		f := newFixture(t)
		c1 := f.court(t, "C1", "")
		f.slot(t, c1.ID, "09:00", 30)
		res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: f.tournament.ID})
		require.NoError(t, err)
		assert.Equal(t, scheduling.ScheduleResult{Conflicts: []scheduling.Conflict{}}, res)
	})

	t.Run("no slots", func(t *testing.T) {
		f := newFixture(t)
		f.game(t, 1, "a", "b")
		f.game(t, 2, "c", "d")
		res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: f.tournament.ID})
		require.NoError(t, err)
		assert.Equal(t, scheduling.ScheduleResult{Skipped: 2, Conflicts: []scheduling.Conflict{}}, res)
	})

	t.Run("errors", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: "nope"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: f.tournament.ID, DrawIDs: []string{"nope"}})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: f.tournament.ID, Strategy: "FASTEST"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{TournamentID: f.tournament.ID, MinRestMinutes: -1})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = f.engine.ScheduleGames(ctx, identity.Player("a"), scheduling.ScheduleRequest{TournamentID: f.tournament.ID})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestScheduleGamesKeepsRestBetweenSharedPlayers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	c2 := f.court(t, "C2", "")
	_, err := f.engine.GenerateTimeSlots(ctx, admin, scheduling.GenerateRequest{
		TournamentID:        f.tournament.ID,
		CourtIDs:            []string{c1.ID, c2.ID},
		Dates:               []string{"2024-01-01"},
		StartTime:           "09:00",
		EndTime:             "13:00",
		SlotDurationMinutes: 30,
		BreakMinutes:        5,
	})
	require.NoError(t, err)

	players := []string{"p1", "p2", "p3", "p4", "p5"}
	order := 0
	for i := range players {
		for j := i + 1; j < len(players); j++ {
			order++
			f.game(t, order, players[i], players[j])
		}
	}

	const rest = 40
	res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{
		TournamentID:   f.tournament.ID,
		Strategy:       scheduling.StrategyCategoryOrder,
		MinRestMinutes: rest,
	})
	require.NoError(t, err)
	assert.Equal(t, order, res.Scheduled+res.Skipped)
	assert.Positive(t, res.Scheduled)

	slots, err := f.engine.ListSlots(ctx, scheduling.SlotFilter{TournamentID: f.tournament.ID, Status: scheduling.SlotScheduled})
	require.NoError(t, err)
	assert.Len(t, slots, res.Scheduled)

	busy := make(map[string][]scheduling.Slot)
	for _, s := range slots {
		for _, p := range f.getGame(t, s.GameID).PlayerIDs() {
			busy[p] = append(busy[p], s)
		}
	}
	for p, list := range busy {
		for i := range list {
			for j := i + 1; j < len(list); j++ {
				a, b := list[i], list[j]
				if b.StartTime.Before(a.StartTime) {
					a, b = b, a
				}
				gap := b.StartTime.Sub(a.EndTime)
				assert.GreaterOrEqual(t, gap, rest*time.Minute, "player %s between %s and %s", p, hm(a), hm(b))
			}
		}
	}

	conflicts, err := f.engine.DetectScheduleConflicts(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestScheduleGamesDrawFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	f.slot(t, c1.ID, "09:00", 30)
	f.slot(t, c1.ID, "10:00", 30)

	se := &club.SubEvent{TournamentID: f.tournament.ID, Name: "Women's singles", GameType: club.GameTypeSingles}
	require.NoError(t, f.store.CreateSubEvent(ctx, se))
	other := &club.Draw{SubEventID: se.ID, Name: "Women's draw"}
	require.NoError(t, f.store.CreateDraw(ctx, other))
	wanted := f.game(t, 1, "a", "b")
	ignored := &club.Game{DrawID: other.ID, Order: 1}
	require.NoError(t, f.store.CreateGame(ctx, ignored))

	unscheduled, err := f.engine.UnscheduledGames(ctx, f.tournament.ID, []string{f.draw.ID})
	require.NoError(t, err)
	require.Len(t, unscheduled, 1)
	assert.Equal(t, wanted.ID, unscheduled[0].ID)

	res, err := f.engine.ScheduleGames(ctx, admin, scheduling.ScheduleRequest{
		TournamentID: f.tournament.ID,
		DrawIDs:      []string{f.draw.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scheduled)
	assert.Empty(t, f.getGame(t, ignored.ID).ScheduleSlotID)

	all, err := f.engine.UnscheduledGames(ctx, f.tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ignored.ID, all[0].ID)

	available, err := f.engine.AvailableSlots(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestDetectScheduleConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "")
	c2 := f.court(t, "C2", "")
	a := f.slot(t, c1.ID, "09:00", 30)
	b := f.slot(t, c2.ID, "09:15", 30)
	c := f.slot(t, c1.ID, "09:40", 30)

	g1 := f.game(t, 1, "x", "y")
	g2 := f.game(t, 2, "x", "z")
	g3 := f.game(t, 3, "y", "z")
	for slotID, gameID := range map[string]string{a.ID: g1.ID, b.ID: g2.ID, c.ID: g3.ID} {
		_, err := f.engine.AssignGameToSlot(ctx, admin, slotID, gameID)
		require.NoError(t, err)
	}

	conflicts, err := f.engine.DetectScheduleConflicts(ctx, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, conflicts, 2)

	assert.Equal(t, "x", conflicts[0].PlayerID)
	assert.Equal(t, g1.ID, conflicts[0].GameID)
	assert.Equal(t, g2.ID, conflicts[0].OtherGameID)
	assert.Equal(t, "z", conflicts[1].PlayerID)
	assert.Equal(t, g2.ID, conflicts[1].GameID)
	assert.Equal(t, g3.ID, conflicts[1].OtherGameID)

	_, err = f.engine.DetectScheduleConflicts(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSyncExternalBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.court(t, "C1", "Court 1")
	c2 := f.court(t, "C2", "")
	s900 := f.slot(t, c1.ID, "09:00", 30)
	s930 := f.slot(t, c1.ID, "09:30", 30)
	s1000 := f.slot(t, c1.ID, "10:00", 30)
	occupied := f.slot(t, c1.ID, "09:20", 5)
	unmapped := f.slot(t, c2.ID, "09:00", 30)
	g := f.game(t, 1, "a", "b")
	_, err := f.engine.AssignGameToSlot(ctx, admin, occupied.ID, g.ID)
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.bookings.GetBookingsFunc = func(ctx context.Context, _ time.Time) ([]playtomic.Booking, error) {
		return []playtomic.Booking{
			{ID: "m1", ResourceName: "Court 1", Start: from.Add(9*time.Hour + 15*time.Minute), End: from.Add(9*time.Hour + 45*time.Minute)},
			{ID: "m2", ResourceName: "Court 7", Start: from.Add(10 * time.Hour), End: from.Add(11 * time.Hour)},
		}, nil
	}

	res, err := f.engine.SyncExternalBookings(ctx, admin, f.tournament.ID, from)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bookings)
	assert.Equal(t, 2, res.Blocked)
	assert.ElementsMatch(t, []string{s900.ID, s930.ID}, res.SlotIDs)
	require.Equal(t, []time.Time{from}, f.bookings.GetBookingsCalls)

	assert.Equal(t, scheduling.SlotBlocked, f.getSlot(t, s900.ID).Status)
	assert.Equal(t, scheduling.SlotBlocked, f.getSlot(t, s930.ID).Status)
	assert.Equal(t, scheduling.SlotAvailable, f.getSlot(t, s1000.ID).Status)
	assert.Equal(t, scheduling.SlotScheduled, f.getSlot(t, occupied.ID).Status)
	assert.Equal(t, scheduling.SlotAvailable, f.getSlot(t, unmapped.ID).Status)

	again, err := f.engine.SyncExternalBookings(ctx, admin, f.tournament.ID, from)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Blocked)
}

func TestSyncExternalBookingsErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	disabled := scheduling.New(f.db, f.clock, time.UTC, nil, f.events, f.metrics)
	_, err := disabled.SyncExternalBookings(ctx, admin, f.tournament.ID, f.clock.Now())
	assert.ErrorIs(t, err, &apperr.Error{Code: apperr.CodeIntegrationDisabled})

	f.bookings.GetBookingsFunc = func(ctx context.Context, _ time.Time) ([]playtomic.Booking, error) {
		return nil, errors.New("upstream unavailable")
	}
	_, err = f.engine.SyncExternalBookings(ctx, admin, f.tournament.ID, f.clock.Now())
	assert.ErrorContains(t, err, "upstream unavailable")

	_, err = f.engine.SyncExternalBookings(ctx, identity.Player("a"), f.tournament.ID, f.clock.Now())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
