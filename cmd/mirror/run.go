package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/hub"
	"github.com/teslashibe/go-mirror/pkg/sim"
	"github.com/teslashibe/go-mirror/pkg/web"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live simulation with the dashboard API",
	Long: `Run ticks the actor in real time and serves the dashboard:

  GET  /api/state, /api/events, /api/config
  POST /api/escalation, /api/reveal, /api/ending, /api/ending/:phase
  GET  /ws/frames

With --scenario the observer follows the scripted path; otherwise it stands
in front of the glass.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("port", "", "HTTP port (overrides config)")
	runCmd.Flags().String("scenario", "", "Scenario YAML driving the observer")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Port = p
	}
	path := cfg.Scenario
	if p, _ := cmd.Flags().GetString("scenario"); p != "" {
		path = p
	}
	scenario, err := loadScenario(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames := hub.New("frames", log.L())
	runner, err := buildRunner(scenario, sim.WithPublisher(frames))
	if err != nil {
		return err
	}
	server := web.NewServer(runner, frames, log.L())

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		frames.Run(gctx)
		return nil
	})
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		err := server.Shutdown(shutdownTimeout)
		// Unblocks Serve if shutdown won the race with it.
		ln.Close()
		return err
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("mirror stopped")
	return nil
}
