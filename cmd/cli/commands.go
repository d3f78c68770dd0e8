package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(clockCmd)
	clockCmd.AddCommand(clockStartCmd, clockStopCmd, clockToggleCmd)
	rootCmd.AddCommand(shotClockCmd)
	rootCmd.AddCommand(timeoutCmd)
	timeoutCmd.AddCommand(timeoutEndCmd)
	rootCmd.AddCommand(possessionCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(viewCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Show the current match record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/match", nil)
	},
}

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Control the game clock",
}

func clockAction(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: strings.ToUpper(action[:1]) + action[1:] + " the game clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return performRequest(http.MethodPost, "/match/clock/"+action, nil)
		},
	}
}

var (
	clockStartCmd  = clockAction("start")
	clockStopCmd   = clockAction("stop")
	clockToggleCmd = clockAction("toggle")
)

var shotClockCmd = &cobra.Command{
	Use:   "shotclock <seconds|reset|start|stop>",
	Short: "Set, reset, start or stop the shot clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "reset":
			return performRequest(http.MethodPost, "/match/shotclock", map[string]any{"reset": true})
		case "start", "stop":
			return performRequest(http.MethodPost, "/match/shotclock/"+args[0], nil)
		}
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid shot clock value %q: %w", args[0], err)
		}
		return performRequest(http.MethodPost, "/match/shotclock", map[string]any{"seconds": seconds})
	},
}

var timeoutCmd = &cobra.Command{
	Use:   "timeout",
	Short: "Start a timeout for the team in possession",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/match/timeout/start", nil)
	},
}

var timeoutEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the running timeout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/match/timeout/end", nil)
	},
}

var possessionCmd = &cobra.Command{
	Use:   "possession <HOME|AWAY|switch>",
	Short: "Assign or switch possession",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "switch" {
			return performRequest(http.MethodPost, "/match/possession", map[string]any{"switch": true})
		}
		return performRequest(http.MethodPost, "/match/possession", map[string]any{"team": strings.ToUpper(args[0])})
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finish the current match and archive it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/match/finish", nil)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/history", nil)
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard <match-id>",
	Short: "Remove a finished match from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/history/"+args[0], nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get lifecycle counters and current match statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats", nil)
	},
}

var viewCmd = &cobra.Command{
	Use:       "view <tracker|jury|scoreboard|stats>",
	Short:     "Render one display view of the current match",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"tracker", "jury", "scoreboard", "stats"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/views/"+args[0], nil)
	},
}

func performRequest(method, endpoint string, body any) error {
	url := host + endpoint
	if dryRun {
		url += "?dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, url)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
