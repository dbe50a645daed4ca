package notifier

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendSchedulePublishedFunc func(ctx context.Context, announcement ScheduleAnnouncement, dryRun bool) error
	SendConflictReportFunc    func(ctx context.Context, report ConflictReport, dryRun bool) error

	// Call records
	SendSchedulePublishedCalls []SendSchedulePublishedCall
	SendConflictReportCalls    []SendConflictReportCall
}

// SendSchedulePublishedCall holds the arguments for a call to SendSchedulePublished.
type SendSchedulePublishedCall struct {
	Announcement ScheduleAnnouncement
	DryRun       bool
}

// SendConflictReportCall holds the arguments for a call to SendConflictReport.
type SendConflictReportCall struct {
	Report ConflictReport
	DryRun bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSchedulePublishedCalls = nil
	m.SendConflictReportCalls = nil
}

func (m *Mock) SendSchedulePublished(ctx context.Context, announcement ScheduleAnnouncement, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSchedulePublishedCalls = append(m.SendSchedulePublishedCalls, SendSchedulePublishedCall{Announcement: announcement, DryRun: dryRun})
	if m.SendSchedulePublishedFunc != nil {
		return m.SendSchedulePublishedFunc(ctx, announcement, dryRun)
	}
	return nil
}

func (m *Mock) SendConflictReport(ctx context.Context, report ConflictReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendConflictReportCalls = append(m.SendConflictReportCalls, SendConflictReportCall{Report: report, DryRun: dryRun})
	if m.SendConflictReportFunc != nil {
		return m.SendConflictReportFunc(ctx, report, dryRun)
	}
	return nil
}
