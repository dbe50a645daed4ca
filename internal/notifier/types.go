package notifier

import "time"

// ScheduledGame is a game as it appears in an announcement, with names
// already resolved.
type ScheduledGame struct {
	Start   time.Time
	Court   string
	Draw    string
	Round   int
	Stage   string
	Players []string
}

// ScheduleAnnouncement is the published schedule of a tournament.
type ScheduleAnnouncement struct {
	TournamentID   string
	TournamentName string
	Games          []ScheduledGame
}

// ConflictLine is one double booking of a player.
type ConflictLine struct {
	Player  string
	Message string
}

// ConflictReport lists the double bookings found in a tournament.
type ConflictReport struct {
	TournamentID   string
	TournamentName string
	Conflicts      []ConflictLine
}
