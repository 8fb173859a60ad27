package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/hub"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

var replayCmd = &cobra.Command{
	Use:   "replay [scenario.yaml]",
	Short: "Play a scenario headless and print a JSON-lines trace",
	Long: `Replay steps the actor at the configured tick rate as fast as possible
and writes one JSON object per line: every event, plus a frame every
--every ticks. A fixed seed makes the trace reproducible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Int("every", 30, "Print a frame every N ticks (0 disables frames)")
	rootCmd.AddCommand(replayCmd)
}

// traceWriter is a sim.Publisher that writes envelopes as JSON lines.
type traceWriter struct {
	enc    *json.Encoder
	every  int
	frames int
}

func newTraceWriter(w io.Writer, every int) *traceWriter {
	return &traceWriter{enc: json.NewEncoder(w), every: every}
}

func (t *traceWriter) Publish(topic string, v any) error {
	if topic == sim.TopicFrame {
		t.frames++
		if t.every <= 0 || t.frames%t.every != 0 {
			return nil
		}
	}
	return t.enc.Encode(hub.Envelope{Topic: topic, Data: v})
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := cfg.Scenario
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("replay needs a scenario file")
	}
	scenario, err := loadScenario(path)
	if err != nil {
		return err
	}

	every, _ := cmd.Flags().GetInt("every")
	runner, err := buildRunner(scenario, sim.WithPublisher(newTraceWriter(cmd.OutOrStdout(), every)))
	if err != nil {
		return err
	}

	dt := cfg.TickInterval().Seconds()
	for !runner.Finished() {
		runner.Step(dt)
	}

	snap := runner.Snapshot()
	log.Info("replay finished",
		"scenario", scenario.Name,
		"ticks", snap.Tick,
		"seconds", snap.Time,
		"ending", snap.EndingPhase.String(),
	)
	return nil
}
