package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/enrollment"
	"github.com/mauv0809/courtside/internal/identity"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/scheduling"
)

const (
	numPlayers = 20
	numCourts  = 4
)

var organizer = identity.Admin("seeder")

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	clock := clockwork.NewRealClock()
	events := pubsub.NewNop()
	m := metrics.NewService()
	store := club.New(db)
	registry := enrollment.New(db, clock, events, m)
	engine := scheduling.New(db, clock, cfg.Location(), nil, events, m)

	startTime := time.Now()

	players := make([]club.Player, 0, numPlayers)
	for i := range numPlayers {
		p := club.Player{
			ID:    uuid.NewString(),
			Name:  fmt.Sprintf("Seeder Player %c", 'A'+i),
			Level: 1 + rand.Float64()*6,
		}
		if err := store.CreatePlayer(ctx, &p); err != nil {
			log.Fatalf("Failed to insert player %s: %s", p.Name, err)
		}
		players = append(players, p)
	}
	log.Info("Inserted players", "count", len(players))

	now := clock.Now()
	opens, closes := now.Add(-24*time.Hour), now.AddDate(0, 0, 14)
	tournament := &club.Tournament{
		Name:                 "Courtside Demo Open",
		Phase:                club.PhaseEnrollmentOpen,
		EnrollmentOpensAt:    &opens,
		EnrollmentClosesAt:   &closes,
		AllowGuestEnrollment: true,
	}
	if err := store.CreateTournament(ctx, tournament); err != nil {
		log.Fatalf("Failed to create tournament: %s", err)
	}

	eight, four := 8, 4
	singles := &club.SubEvent{TournamentID: tournament.ID, Name: "Open singles", GameType: club.GameTypeSingles, MaxEntries: &eight, WaitingListEnabled: true}
	doubles := &club.SubEvent{TournamentID: tournament.ID, Name: "Open doubles", GameType: club.GameTypeDoubles, MaxEntries: &four, WaitingListEnabled: true}
	for _, se := range []*club.SubEvent{singles, doubles} {
		if err := store.CreateSubEvent(ctx, se); err != nil {
			log.Fatalf("Failed to create sub-event %s: %s", se.Name, err)
		}
	}

	for i := 1; i <= numCourts; i++ {
		c := &club.Court{TournamentID: tournament.ID, Name: fmt.Sprintf("Court %d", i), ExternalResourceName: fmt.Sprintf("Pista %d", i)}
		if err := store.CreateCourt(ctx, c); err != nil {
			log.Fatalf("Failed to create court %s: %s", c.Name, err)
		}
	}

	// Ten singles entries for eight places leaves two on the waiting list.
	var confirmed []string
	for _, p := range players[:10] {
		e, err := registry.Enroll(ctx, organizer, singles.ID, p.ID, "")
		if err != nil {
			log.Fatalf("Failed to enroll %s: %s", p.Name, err)
		}
		if e.Status == enrollment.StatusConfirmed {
			confirmed = append(confirmed, p.ID)
		}
	}

	// Doubles players enroll in mutual pairs.
	for i := 10; i+1 < len(players); i += 2 {
		a, b := players[i], players[i+1]
		if _, err := registry.Enroll(ctx, organizer, doubles.ID, a.ID, b.ID); err != nil {
			log.Fatalf("Failed to enroll %s: %s", a.Name, err)
		}
		if _, err := registry.Enroll(ctx, organizer, doubles.ID, b.ID, a.ID); err != nil {
			log.Fatalf("Failed to enroll %s: %s", b.Name, err)
		}
	}
	log.Info("Seeded enrollments", "singlesConfirmed", len(confirmed))

	draw := &club.Draw{SubEventID: singles.ID, Name: "Singles main draw"}
	if err := store.CreateDraw(ctx, draw); err != nil {
		log.Fatalf("Failed to create draw: %s", err)
	}
	rand.Shuffle(len(confirmed), func(i, j int) { confirmed[i], confirmed[j] = confirmed[j], confirmed[i] })
	for i := 0; i+1 < len(confirmed); i += 2 {
		g := &club.Game{
			DrawID: draw.ID,
			Round:  1,
			Stage:  club.StageQuarterFinal,
			Order:  i/2 + 1,
			Players: []club.GamePlayer{
				{PlayerID: confirmed[i], Team: 1},
				{PlayerID: confirmed[i+1], Team: 2},
			},
		}
		if err := store.CreateGame(ctx, g); err != nil {
			log.Fatalf("Failed to create game: %s", err)
		}
	}

	day := now.AddDate(0, 0, 21).In(cfg.Location()).Format("2006-01-02")
	gen, err := engine.GenerateTimeSlots(ctx, organizer, scheduling.GenerateRequest{
		TournamentID:        tournament.ID,
		Dates:               []string{day},
		StartTime:           "09:00",
		EndTime:             "13:00",
		SlotDurationMinutes: 60,
		BreakMinutes:        15,
	})
	if err != nil {
		log.Fatalf("Failed to generate slots: %s", err)
	}
	res, err := engine.ScheduleGames(ctx, organizer, scheduling.ScheduleRequest{
		TournamentID:   tournament.ID,
		Strategy:       scheduling.StrategyByLevel,
		MinRestMinutes: 30,
	})
	if err != nil {
		log.Fatalf("Failed to schedule games: %s", err)
	}

	log.Info("Seeded demo tournament",
		"tournamentID", tournament.ID,
		"slots", gen.Created,
		"scheduled", res.Scheduled,
		"skipped", res.Skipped,
		"duration", time.Since(startTime))
}
