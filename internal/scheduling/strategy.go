package scheduling

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/club"
)

// StrategyName selects the order in which ScheduleGames places games.
type StrategyName string

const (
	StrategyCategoryOrder StrategyName = "CATEGORY_ORDER"
	StrategyByLevel       StrategyName = "BY_LEVEL"
	StrategyRandom        StrategyName = "RANDOM"
	StrategyMinimizeWait  StrategyName = "MINIMIZE_WAIT"
)

// Strategy orders candidate games in place before slots are handed out.
type Strategy interface {
	Name() StrategyName
	Sort(games []club.Game)
}

// StrategyFor resolves a strategy name. An empty name is MINIMIZE_WAIT.
func StrategyFor(name StrategyName) (Strategy, error) {
	switch name {
	case StrategyCategoryOrder:
		return CategoryOrder{}, nil
	case StrategyByLevel:
		return ByLevel{}, nil
	case StrategyRandom:
		return Random{}, nil
	case StrategyMinimizeWait, "":
		return MinimizeWait{}, nil
	}
	return nil, apperr.Validation(apperr.CodeInvalidArgument, "unknown scheduling strategy %q", name)
}

// CategoryOrder keeps each bracket together: draw, then round, then order.
type CategoryOrder struct{}

func (CategoryOrder) Name() StrategyName { return StrategyCategoryOrder }

func (CategoryOrder) Sort(games []club.Game) {
	slices.SortStableFunc(games, func(a, b club.Game) int {
		return cmp.Or(
			cmp.Compare(a.DrawID, b.DrawID),
			cmp.Compare(a.Round, b.Round),
			cmp.Compare(a.Order, b.Order),
		)
	})
}

// ByLevel puts finals first, then semi-finals, then quarter-finals, then
// everything else, each group by draw.
type ByLevel struct{}

func (ByLevel) Name() StrategyName { return StrategyByLevel }

func (ByLevel) Sort(games []club.Game) {
	slices.SortStableFunc(games, func(a, b club.Game) int {
		return cmp.Or(
			cmp.Compare(stageRank(a.Stage), stageRank(b.Stage)),
			cmp.Compare(a.DrawID, b.DrawID),
		)
	})
}

func stageRank(s club.Stage) int {
	switch s {
	case club.StageFinal:
		return 0
	case club.StageSemiFinal:
		return 1
	case club.StageQuarterFinal:
		return 2
	}
	return 3
}

// Random shuffles uniformly. Shuffle defaults to math/rand/v2's.
type Random struct {
	Shuffle func(n int, swap func(i, j int))
}

func (Random) Name() StrategyName { return StrategyRandom }

func (r Random) Sort(games []club.Game) {
	shuffle := r.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(games), func(i, j int) { games[i], games[j] = games[j], games[i] })
}

// MinimizeWait plays early rounds first across all draws.
type MinimizeWait struct{}

func (MinimizeWait) Name() StrategyName { return StrategyMinimizeWait }

func (MinimizeWait) Sort(games []club.Game) {
	slices.SortStableFunc(games, func(a, b club.Game) int {
		return cmp.Or(
			cmp.Compare(a.Round, b.Round),
			cmp.Compare(a.Order, b.Order),
		)
	})
}
