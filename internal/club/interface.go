package club

import (
	"context"
	"time"
)

// ClubStore defines the interface for the club's reference data: players,
// tournaments and the sub-events, courts, draws and games under them.
type ClubStore interface {
	CreatePlayer(ctx context.Context, p *Player) error
	GetPlayer(ctx context.Context, id string) (*Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)

	CreateTournament(ctx context.Context, t *Tournament) error
	GetTournament(ctx context.Context, id string) (*Tournament, error)
	UpdateTournamentPhase(ctx context.Context, id string, phase Phase) error
	MarkSchedulePublished(ctx context.Context, id string, at time.Time) error

	CreateSubEvent(ctx context.Context, se *SubEvent) error
	GetSubEvent(ctx context.Context, id string) (*SubEvent, error)
	ListSubEvents(ctx context.Context, tournamentID string) ([]SubEvent, error)

	CreateCourt(ctx context.Context, c *Court) error
	GetCourt(ctx context.Context, id string) (*Court, error)
	ListCourts(ctx context.Context, tournamentID string) ([]Court, error)

	CreateDraw(ctx context.Context, d *Draw) error
	ListDraws(ctx context.Context, tournamentID string) ([]Draw, error)

	CreateGame(ctx context.Context, g *Game) error
	GetGame(ctx context.Context, id string) (*Game, error)
	ListGames(ctx context.Context, tournamentID string) ([]Game, error)
}
