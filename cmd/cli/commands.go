package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(enrollmentsCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(waitingListCmd)
	rootCmd.AddCommand(generateSlotsCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(syncCmd)

	enrollCmd.Flags().String("partner", "", "Preferred doubles partner id")
	enrollCmd.Flags().String("player", "", "Player to enroll (defaults to --as)")

	generateSlotsCmd.Flags().StringSlice("dates", nil, "Dates to generate slots for (YYYY-MM-DD)")
	generateSlotsCmd.Flags().StringSlice("courts", nil, "Court ids (defaults to all courts)")
	generateSlotsCmd.Flags().String("start", "09:00", "Daily start time (HH:MM)")
	generateSlotsCmd.Flags().String("end", "18:00", "Daily end time (HH:MM)")
	generateSlotsCmd.Flags().Int("duration", 60, "Slot duration in minutes")
	generateSlotsCmd.Flags().Int("break", 0, "Break between slots in minutes")
	_ = generateSlotsCmd.MarkFlagRequired("dates")

	slotsCmd.Flags().String("date", "", "Only slots starting on this date (YYYY-MM-DD)")
	slotsCmd.Flags().String("status", "", "Only slots with this status")

	scheduleCmd.Flags().StringSlice("draws", nil, "Draw ids to schedule (defaults to all draws)")
	scheduleCmd.Flags().String("strategy", "", "CATEGORY_ORDER, BY_LEVEL, RANDOM or MINIMIZE_WAIT")
	scheduleCmd.Flags().Int("min-rest", 30, "Minimum rest between a player's games in minutes")

	conflictsCmd.Flags().Bool("notify", false, "Post the conflict report to Slack")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <sub-event-id>",
	Short: "Enroll a player in a sub-event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		player, _ := cmd.Flags().GetString("player")
		partner, _ := cmd.Flags().GetString("partner")
		body := map[string]string{}
		if player != "" {
			body["player_id"] = player
		}
		if partner != "" {
			body["preferred_partner_id"] = partner
		}
		return performRequest(http.MethodPost, "/sub-events/"+args[0]+"/enrollments", body)
	},
}

var enrollmentsCmd = &cobra.Command{
	Use:   "enrollments [sub-event-id]",
	Short: "List enrollments of a sub-event, or your own without an argument",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return performRequest(http.MethodGet, "/enrollments/me", nil)
		}
		return performRequest(http.MethodGet, "/sub-events/"+args[0]+"/enrollments", nil)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <enrollment-id>",
	Short: "Cancel or withdraw an enrollment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/enrollments/"+args[0]+"/cancel", nil)
	},
}

var waitingListCmd = &cobra.Command{
	Use:   "waiting-list <sub-event-id>",
	Short: "Show the waiting list of a sub-event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sub-events/"+args[0]+"/waiting-list", nil)
	},
}

var generateSlotsCmd = &cobra.Command{
	Use:   "generate-slots <tournament-id>",
	Short: "Generate schedule slots for a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dates, _ := cmd.Flags().GetStringSlice("dates")
		courts, _ := cmd.Flags().GetStringSlice("courts")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		duration, _ := cmd.Flags().GetInt("duration")
		pause, _ := cmd.Flags().GetInt("break")
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/slots/generate", map[string]any{
			"court_ids":             courts,
			"dates":                 dates,
			"start_time":            start,
			"end_time":              end,
			"slot_duration_minutes": duration,
			"break_minutes":         pause,
		})
	},
}

var slotsCmd = &cobra.Command{
	Use:   "slots <tournament-id>",
	Short: "List the schedule slots of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if date, _ := cmd.Flags().GetString("date"); date != "" {
			q.Set("date", date)
		}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			q.Set("status", strings.ToUpper(status))
		}
		path := "/tournaments/" + args[0] + "/slots"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		return performRequest(http.MethodGet, path, nil)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <tournament-id>",
	Short: "Assign unscheduled games to available slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draws, _ := cmd.Flags().GetStringSlice("draws")
		strategy, _ := cmd.Flags().GetString("strategy")
		minRest, _ := cmd.Flags().GetInt("min-rest")
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/schedule", map[string]any{
			"draw_ids":         draws,
			"strategy":         strings.ToUpper(strategy),
			"min_rest_minutes": minRest,
		})
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <tournament-id>",
	Short: "List players booked into overlapping slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/tournaments/" + args[0] + "/conflicts"
		if notify, _ := cmd.Flags().GetBool("notify"); notify {
			path += "?notify=true"
		}
		return performRequest(http.MethodGet, path, nil)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <tournament-id>",
	Short: "Publish the schedule and announce it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/publish", nil)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync-bookings <tournament-id>",
	Short: "Block slots that overlap external court bookings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/tournaments/"+args[0]+"/sync-bookings", nil)
	},
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	if dryRun {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	if permissions != "" {
		req.Header.Set("X-Permissions", permissions)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
