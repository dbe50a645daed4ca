package scheduling

import "time"

// busy is a slot a player is already committed to.
type busy struct {
	start, end time.Time
	gameID     string
	slotID     string
}

// restBlock names the player and the earlier commitment that rule out a slot.
type restBlock struct {
	playerID string
	other    busy
}

// restTracker remembers when each player is busy and checks that a new slot
// leaves at least minRest on both sides of every earlier commitment.
type restTracker struct {
	minRest time.Duration
	busy    map[string][]busy
}

func newRestTracker(minRest time.Duration) *restTracker {
	return &restTracker{minRest: minRest, busy: make(map[string][]busy)}
}

func (r *restTracker) add(players []string, gameID string, s Slot) {
	for _, p := range players {
		r.busy[p] = append(r.busy[p], busy{start: s.StartTime, end: s.EndTime, gameID: gameID, slotID: s.ID})
	}
}

// blocking returns, in player order, the first commitment of each player
// that is too close to s. Players with no commitments never block.
//
// Every commitment is checked as an interval, not only the player's latest
// end time: a slot ending at least minRest before an existing game is
// allowed, so this admits earlier slots a latest-end check would reject
// while keeping the same minimum gap between any two of a player's games.
func (r *restTracker) blocking(players []string, s Slot) []restBlock {
	var blocks []restBlock
	for _, p := range players {
		for _, b := range r.busy[p] {
			after := !s.StartTime.Before(b.end.Add(r.minRest))
			before := !s.EndTime.Add(r.minRest).After(b.start)
			if !after && !before {
				blocks = append(blocks, restBlock{playerID: p, other: b})
				break
			}
		}
	}
	return blocks
}

// latest returns the commitment of p that ends last.
func (r *restTracker) latest(p string) (busy, bool) {
	var last busy
	for _, b := range r.busy[p] {
		if b.end.After(last.end) {
			last = b
		}
	}
	return last, len(r.busy[p]) > 0
}
