package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/httpc"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Send a narrative trigger to a running dashboard",
}

func init() {
	triggerCmd.PersistentFlags().String("url", "", "Dashboard base URL (default http://localhost:<port>)")

	triggerCmd.AddCommand(&cobra.Command{
		Use:   "reveal",
		Short: "Arm the one-shot scripted reveal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return postTrigger(cmd, "/api/reveal", nil)
		},
	})
	triggerCmd.AddCommand(&cobra.Command{
		Use:   "ending [phase]",
		Short: "Start the ending, or jump forward to a named phase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return postTrigger(cmd, "/api/ending/"+args[0], nil)
			}
			return postTrigger(cmd, "/api/ending", nil)
		},
	})
	triggerCmd.AddCommand(&cobra.Command{
		Use:   "escalation <level>",
		Short: fmt.Sprintf("Set the escalation level (0-%d)", sim.MaxEscalation),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("level: %w", err)
			}
			return postTrigger(cmd, "/api/escalation", map[string]int{"level": level})
		},
	})
	rootCmd.AddCommand(triggerCmd)
}

func postTrigger(cmd *cobra.Command, path string, body any) error {
	base, _ := cmd.Flags().GetString("url")
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}

	var out json.RawMessage
	if err := httpc.New(base, 0).Post(cmd.Context(), path, body, &out); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
