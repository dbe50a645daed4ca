package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Slack rejects section texts over 3000 characters; a day's games are split
// into chunks well below that.
const gamesPerSection = 20

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	loc       *time.Location
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. Times are shown in loc.
func NewNotifier(token, channelID string, loc *time.Location, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, loc, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, loc *time.Location, metrics metrics.Metrics) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		loc:       loc,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, fallback string, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendSchedulePublished(ctx context.Context, announcement notifier.ScheduleAnnouncement, dryRun bool) error {
	msg := s.formatSchedule(announcement)
	_, _, err := s.sendMessage(ctx, msg, fmt.Sprintf("The schedule for %s is out", announcement.TournamentName), dryRun)
	return err
}

func (s *Notifier) SendConflictReport(ctx context.Context, report notifier.ConflictReport, dryRun bool) error {
	msg := s.formatConflictReport(report)
	_, _, err := s.sendMessage(ctx, msg, fmt.Sprintf("%d schedule conflicts in %s", len(report.Conflicts), report.TournamentName), dryRun)
	return err
}

// formatSchedule creates the announcement message using Block Kit, one
// section per day.
func (s *Notifier) formatSchedule(a notifier.ScheduleAnnouncement) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📅 %s: the schedule is out!", a.TournamentName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(a.Games) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No games have been scheduled yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var (
		day   string
		lines []string
	)
	flush := func() {
		for start := 0; start < len(lines); start += gamesPerSection {
			end := min(start+gamesPerSection, len(lines))
			text := strings.Join(lines[start:end], "\n")
			if start == 0 {
				text = fmt.Sprintf("*%s*\n%s", day, text)
			}
			blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
		}
		lines = lines[:0]
	}
	for _, g := range a.Games {
		start := g.Start.In(s.loc)
		if d := start.Format("Monday 02 Jan"); d != day {
			if day != "" {
				flush()
				blocks = append(blocks, slack.NewDividerBlock())
			}
			day = d
		}
		lines = append(lines, formatGameLine(start, g))
	}
	flush()

	contextText := fmt.Sprintf("%d games scheduled", len(a.Games))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

func formatGameLine(start time.Time, g notifier.ScheduledGame) string {
	round := fmt.Sprintf("R%d", g.Round)
	if g.Stage != "" {
		round = strings.ReplaceAll(strings.ToLower(g.Stage), "_", "-")
	}
	players := "TBD"
	if len(g.Players) > 0 {
		players = strings.Join(g.Players, " vs ")
	}
	return fmt.Sprintf("• `%s` %s · %s %s · %s", start.Format("15:04"), g.Court, g.Draw, round, players)
}

// formatConflictReport creates the organizer alert for double bookings.
func (s *Notifier) formatConflictReport(r notifier.ConflictReport) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("⚠️ %s: schedule conflicts", r.TournamentName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(r.Conflicts) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No conflicts found. ✅", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	lines := make([]string, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		lines = append(lines, fmt.Sprintf("• *%s*: %s", c.Player, c.Message))
	}
	for start := 0; start < len(lines); start += gamesPerSection {
		end := min(start+gamesPerSection, len(lines))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines[start:end], "\n"), false, false), nil, nil))
	}

	contextText := fmt.Sprintf("%d conflicts. Fix them before publishing.", len(r.Conflicts))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}
