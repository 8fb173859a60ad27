package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/sim"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream frames and events from a running dashboard",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("url", "", "Websocket URL (default ws://localhost:<port>/ws/frames)")
	watchCmd.Flags().Bool("events-only", false, "Print events only")
	rootCmd.AddCommand(watchCmd)
}

type envelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = fmt.Sprintf("ws://localhost:%s/ws/frames", cfg.Port)
	}
	eventsOnly, _ := cmd.Flags().GetBool("events-only")

	conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()
	log.Info("watching", "url", url)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	out := cmd.OutOrStdout()
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch env.Topic {
		case sim.TopicEvent:
			var ev mirror.Event
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			fmt.Fprintf(out, "event  t=%7.2f %-16s %s %s %s\n", ev.Time, ev.Kind, ev.Layer, ev.Variant, ev.Phase)
		case sim.TopicFrame:
			if eventsOnly {
				continue
			}
			var s mirror.Snapshot
			if err := json.Unmarshal(env.Data, &s); err != nil {
				return fmt.Errorf("decode frame: %w", err)
			}
			// Frames arrive every tick; print about twice a second at 60 Hz.
			if s.Tick%30 != 0 {
				continue
			}
			p := s.Transform.Position
			fmt.Fprintf(out, "frame  t=%7.2f visible=%-5t layer=%-12s delay=%-3d pos=(%.2f, %.2f, %.2f) ending=%s\n",
				s.Time, s.Visible, s.Layer, s.DelayFrames, p.X, p.Y, p.Z, s.EndingPhase)
		}
	}
}
