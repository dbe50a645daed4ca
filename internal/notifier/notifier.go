package notifier

import "context"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// When a tournament's schedule goes public
	SendSchedulePublished(ctx context.Context, announcement ScheduleAnnouncement, dryRun bool) error
	// For organizers, when the schedule has double bookings
	SendConflictReport(ctx context.Context, report ConflictReport, dryRun bool) error
}
