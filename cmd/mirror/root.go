package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Wrong-reflection actor simulation",
	Long: `mirror drives a reflection that tracks the player with a delay and
slowly stops behaving like a reflection.

Settings come from --config (YAML) and MIRROR_* environment variables,
e.g. MIRROR_PORT=9000 MIRROR_PRESET=hostile mirror run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.LogFormat = logFormat
		}
		cfg = loaded
		log.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// buildRunner creates the actor and runner from cfg, with scenario overrides
// for preset and seed.
func buildRunner(scenario *sim.Scenario, opts ...sim.Option) (*sim.Runner, error) {
	preset, seed := cfg.Preset, cfg.Seed
	if scenario != nil {
		if scenario.Preset != "" {
			preset = scenario.Preset
		}
		if scenario.Seed != 0 {
			seed = scenario.Seed
		}
		opts = append(opts, sim.WithScenario(scenario))
	}

	tuning, err := mirror.PresetConfig(preset)
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	actor := mirror.NewActor(cfg.Plane(), tuning,
		mirror.WithRand(mirror.NewRand(seed)),
		mirror.WithLogger(log.L()),
	)
	log.Info("actor created", "session", actor.ID(), "preset", preset, "seed", seed)

	opts = append(opts,
		sim.WithTickInterval(cfg.TickInterval()),
		sim.WithLogger(log.L()),
		sim.WithEscalation(cfg.Escalation),
	)
	return sim.NewRunner(actor, opts...), nil
}

func loadScenario(path string) (*sim.Scenario, error) {
	if path == "" {
		return nil, nil
	}
	s, err := sim.LoadScenario(path)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}
