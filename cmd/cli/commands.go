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

var (
	activeOnly   bool
	roundNote    string
	defaultCount int
	dryRun       bool
)

func init() {
	rootCmd.AddCommand(healthCmd, metricsCmd)

	sessionCmd.AddCommand(sessionCreateCmd, sessionDeleteCmd)
	rootCmd.AddCommand(sessionsCmd, sessionCmd)

	playersCmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active players")
	playerDefaultsCmd.Flags().IntVar(&defaultCount, "count", 0, "Number of players to create (server default when 0)")
	playerCmd.AddCommand(playerAddCmd, playerRenameCmd, playerToggleCmd, playerDeleteCmd, playerDefaultsCmd)
	rootCmd.AddCommand(playersCmd, playerCmd)

	roundAddCmd.Flags().StringVar(&roundNote, "note", "", "Optional note for the round")
	roundCmd.AddCommand(roundAddCmd)
	rootCmd.AddCommand(roundCmd, roundsCmd, undoCmd)

	notifyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the notification instead of sending it")
	rootCmd.AddCommand(standingsCmd, auditCmd, notifyCmd)
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

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List all sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions", nil)
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions", map[string]string{"name": strings.Join(args, " ")})
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session with all of its players, rounds and totals",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/sessions/"+args[0], nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players <session-id>",
	Short: "List the players of a session",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/sessions/" + args[0] + "/players"
		if activeOnly {
			endpoint += "?active=true"
		}
		return performRequest(http.MethodGet, endpoint, nil)
	},
}

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Manage players",
}

var playerAddCmd = &cobra.Command{
	Use:   "add <session-id> <name>",
	Short: "Add a player to a session",
	Args:  cobra.MatchAll(cobra.MinimumNArgs(2), idArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/players", map[string]string{"name": strings.Join(args[1:], " ")})
	},
}

var playerRenameCmd = &cobra.Command{
	Use:   "rename <player-id> <name>",
	Short: "Rename a player",
	Args:  cobra.MatchAll(cobra.MinimumNArgs(2), idArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPatch, "/players/"+args[0], map[string]string{"name": strings.Join(args[1:], " ")})
	},
}

var playerToggleCmd = &cobra.Command{
	Use:   "toggle <player-id>",
	Short: "Toggle whether a player takes part in new rounds",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/players/"+args[0]+"/toggle", nil)
	},
}

var playerDeleteCmd = &cobra.Command{
	Use:   "delete <player-id>",
	Short: "Delete a player with their entries and total",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/players/"+args[0], nil)
	},
}

var playerDefaultsCmd = &cobra.Command{
	Use:   "defaults <session-id>",
	Short: "Create the default players for a session",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/players/defaults", map[string]int{"count": defaultCount})
	},
}

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Record rounds",
}

var roundAddCmd = &cobra.Command{
	Use:     "add <session-id> <player-id>=<delta>...",
	Short:   "Record a round; every active player needs a delta",
	Example: `  scorekeeper-cli round add 1 1=10 2=-5 3=-5 4=0 --note "first hand"`,
	Args:    cobra.MatchAll(cobra.MinimumNArgs(1), idArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		deltas, err := parseDeltas(args[1:])
		if err != nil {
			return err
		}
		body := map[string]any{"deltas": deltas}
		if roundNote != "" {
			body["note"] = roundNote
		}
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/rounds", body)
	},
}

var roundsCmd = &cobra.Command{
	Use:   "rounds <session-id>",
	Short: "List the rounds of a session, newest first",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/rounds", nil)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <session-id>",
	Short: "Undo the latest round of a session",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sessions/"+args[0]+"/undo", nil)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings <session-id>",
	Short: "Show the standings of a session",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/totals", nil)
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit <session-id>",
	Short: "List players whose total disagrees with their entries",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/sessions/"+args[0]+"/audit", nil)
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <session-id>",
	Short: "Send the current standings to the configured notifier",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/sessions/" + args[0] + "/standings/notify"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(http.MethodPost, endpoint, nil)
	},
}

// idArgs requires the first n args to be numeric ids.
func idArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return fmt.Errorf("requires at least %d id argument(s)", n)
		}
		for _, arg := range args[:n] {
			if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
				return fmt.Errorf("invalid id %q", arg)
			}
		}
		return nil
	}
}

type delta struct {
	PlayerID int64 `json:"playerId"`
	Delta    int   `json:"delta"`
}

func parseDeltas(args []string) ([]delta, error) {
	deltas := make([]delta, 0, len(args))
	for _, arg := range args {
		id, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid delta %q, expected <player-id>=<delta>", arg)
		}
		playerID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid player id in %q: %w", arg, err)
		}
		d, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid delta in %q: %w", arg, err)
		}
		deltas = append(deltas, delta{PlayerID: playerID, Delta: d})
	}
	return deltas, nil
}

func performRequest(method, endpoint string, body any) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
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
