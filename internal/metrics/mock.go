package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	enrollments         map[string]int
	partnerMatches      int
	promotions          int
	slotsGenerated      int
	gamesScheduled      int
	gamesSkipped        int
	conflictsDetected   int
	schedulingDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		enrollments:         make(map[string]int),
		schedulingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncEnrollments(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[status]++
}

func (m *Mock) IncPartnerMatches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partnerMatches++
}

func (m *Mock) IncPromotions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions++
}

func (m *Mock) IncSlotsGenerated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slotsGenerated += n
}

func (m *Mock) IncGamesScheduled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesScheduled += n
}

func (m *Mock) IncGamesSkipped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesSkipped += n
}

func (m *Mock) IncConflictsDetected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflictsDetected += n
}

func (m *Mock) ObserveSchedulingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedulingDurations = append(m.schedulingDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Enrollments returns how many enrollments were counted with the given status.
func (m *Mock) Enrollments(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrollments[status]
}

// PartnerMatches returns the number of times IncPartnerMatches was called.
func (m *Mock) PartnerMatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.partnerMatches
}

// Promotions returns the number of times IncPromotions was called.
func (m *Mock) Promotions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promotions
}

// SlotsGenerated returns the total passed to IncSlotsGenerated.
func (m *Mock) SlotsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slotsGenerated
}

// GamesScheduled returns the total passed to IncGamesScheduled.
func (m *Mock) GamesScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesScheduled
}

// GamesSkipped returns the total passed to IncGamesSkipped.
func (m *Mock) GamesSkipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesSkipped
}

// ConflictsDetected returns the total passed to IncConflictsDetected.
func (m *Mock) ConflictsDetected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflictsDetected
}

// SchedulingRuns returns how many scheduling durations were observed.
func (m *Mock) SchedulingRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.schedulingDurations)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
