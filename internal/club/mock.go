package club

import (
	"context"
	"sync"
	"time"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	CreatePlayerFunc          func(ctx context.Context, p *Player) error
	GetPlayerFunc             func(ctx context.Context, id string) (*Player, error)
	ListPlayersFunc           func(ctx context.Context) ([]Player, error)
	CreateTournamentFunc      func(ctx context.Context, t *Tournament) error
	GetTournamentFunc         func(ctx context.Context, id string) (*Tournament, error)
	UpdateTournamentPhaseFunc func(ctx context.Context, id string, phase Phase) error
	MarkSchedulePublishedFunc func(ctx context.Context, id string, at time.Time) error
	CreateSubEventFunc        func(ctx context.Context, se *SubEvent) error
	GetSubEventFunc           func(ctx context.Context, id string) (*SubEvent, error)
	ListSubEventsFunc         func(ctx context.Context, tournamentID string) ([]SubEvent, error)
	CreateCourtFunc           func(ctx context.Context, c *Court) error
	GetCourtFunc              func(ctx context.Context, id string) (*Court, error)
	ListCourtsFunc            func(ctx context.Context, tournamentID string) ([]Court, error)
	CreateDrawFunc            func(ctx context.Context, d *Draw) error
	ListDrawsFunc             func(ctx context.Context, tournamentID string) ([]Draw, error)
	CreateGameFunc            func(ctx context.Context, g *Game) error
	GetGameFunc               func(ctx context.Context, id string) (*Game, error)
	ListGamesFunc             func(ctx context.Context, tournamentID string) ([]Game, error)

	// Call records
	UpdateTournamentPhaseCalls []struct {
		ID    string
		Phase Phase
	}
	MarkSchedulePublishedCalls []struct {
		ID string
		At time.Time
	}
	GetTournamentCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateTournamentPhaseCalls = nil
	m.MarkSchedulePublishedCalls = nil
	m.GetTournamentCalls = nil
}

func (m *MockStore) CreatePlayer(ctx context.Context, p *Player) error {
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(ctx, p)
	}
	return nil
}

func (m *MockStore) GetPlayer(ctx context.Context, id string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, id)
	}
	return &Player{ID: id}, nil
}

func (m *MockStore) ListPlayers(ctx context.Context) ([]Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) CreateTournament(ctx context.Context, t *Tournament) error {
	if m.CreateTournamentFunc != nil {
		return m.CreateTournamentFunc(ctx, t)
	}
	return nil
}

func (m *MockStore) GetTournament(ctx context.Context, id string) (*Tournament, error) {
	m.mu.Lock()
	m.GetTournamentCalls = append(m.GetTournamentCalls, id)
	m.mu.Unlock()
	if m.GetTournamentFunc != nil {
		return m.GetTournamentFunc(ctx, id)
	}
	return &Tournament{ID: id, Phase: PhaseScheduling}, nil
}

func (m *MockStore) UpdateTournamentPhase(ctx context.Context, id string, phase Phase) error {
	m.mu.Lock()
	m.UpdateTournamentPhaseCalls = append(m.UpdateTournamentPhaseCalls, struct {
		ID    string
		Phase Phase
	}{id, phase})
	m.mu.Unlock()
	if m.UpdateTournamentPhaseFunc != nil {
		return m.UpdateTournamentPhaseFunc(ctx, id, phase)
	}
	return nil
}

func (m *MockStore) MarkSchedulePublished(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	m.MarkSchedulePublishedCalls = append(m.MarkSchedulePublishedCalls, struct {
		ID string
		At time.Time
	}{id, at})
	m.mu.Unlock()
	if m.MarkSchedulePublishedFunc != nil {
		return m.MarkSchedulePublishedFunc(ctx, id, at)
	}
	return nil
}

func (m *MockStore) CreateSubEvent(ctx context.Context, se *SubEvent) error {
	if m.CreateSubEventFunc != nil {
		return m.CreateSubEventFunc(ctx, se)
	}
	return nil
}

func (m *MockStore) GetSubEvent(ctx context.Context, id string) (*SubEvent, error) {
	if m.GetSubEventFunc != nil {
		return m.GetSubEventFunc(ctx, id)
	}
	return &SubEvent{ID: id}, nil
}

func (m *MockStore) ListSubEvents(ctx context.Context, tournamentID string) ([]SubEvent, error) {
	if m.ListSubEventsFunc != nil {
		return m.ListSubEventsFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (m *MockStore) CreateCourt(ctx context.Context, c *Court) error {
	if m.CreateCourtFunc != nil {
		return m.CreateCourtFunc(ctx, c)
	}
	return nil
}

func (m *MockStore) GetCourt(ctx context.Context, id string) (*Court, error) {
	if m.GetCourtFunc != nil {
		return m.GetCourtFunc(ctx, id)
	}
	return &Court{ID: id}, nil
}

func (m *MockStore) ListCourts(ctx context.Context, tournamentID string) ([]Court, error) {
	if m.ListCourtsFunc != nil {
		return m.ListCourtsFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (m *MockStore) CreateDraw(ctx context.Context, d *Draw) error {
	if m.CreateDrawFunc != nil {
		return m.CreateDrawFunc(ctx, d)
	}
	return nil
}

func (m *MockStore) ListDraws(ctx context.Context, tournamentID string) ([]Draw, error) {
	if m.ListDrawsFunc != nil {
		return m.ListDrawsFunc(ctx, tournamentID)
	}
	return nil, nil
}

func (m *MockStore) CreateGame(ctx context.Context, g *Game) error {
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(ctx, g)
	}
	return nil
}

func (m *MockStore) GetGame(ctx context.Context, id string) (*Game, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(ctx, id)
	}
	return &Game{ID: id}, nil
}

func (m *MockStore) ListGames(ctx context.Context, tournamentID string) ([]Game, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc(ctx, tournamentID)
	}
	return nil, nil
}
