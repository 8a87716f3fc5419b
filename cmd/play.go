package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
	"github.com/danmaku-sim/danmaku-sim/sim/observe"
	"github.com/danmaku-sim/danmaku-sim/sim/render"
	"github.com/danmaku-sim/danmaku-sim/sim/textmetrics"
)

var (
	playConfig configFlags
	playInput  inputFlags
	playOpts   playParams
)

// playParams configures real-time playback.
type playParams struct {
	FPS          float64
	For          time.Duration // stop after this much host time; 0 plays until interrupted
	MetricsAddr  string        // serve /metrics here when set
	Measurer     string
	ReadControls bool // read control commands from stdin
}

// playCmd plays comments against the wall clock
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play comments in real time, serving live metrics",
	Long: "Drive the compositor from a wall-clock ticker. With --controls, lines on stdin are applied between frames:\n" +
		"  pause | play | seek <seconds> [refresh] | resize <width> <height>",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := playConfig.resolve(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		in, err := playInput.load(cmd.Flags().Changed("seed"))
		if err != nil {
			logrus.Fatalf("Failed to load comments: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var controls io.Reader
		if playOpts.ReadControls {
			controls = os.Stdin
		}
		if err := runPlayback(ctx, cfg, in, playOpts, controls, os.Stdout); err != nil {
			logrus.Fatalf("Playback failed: %v", err)
		}
	},
}

// runPlayback plays in until ctx ends or p.For elapses, then prints the
// metrics summary to out.
func runPlayback(ctx context.Context, cfg sim.Config, in *input, p playParams, controls io.Reader, out io.Writer) error {
	if !(p.FPS > 0) {
		return fmt.Errorf("frame rate must be positive, got %v", p.FPS)
	}
	measurer, err := textmetrics.ByName(p.Measurer)
	if err != nil {
		return err
	}
	if closer, ok := measurer.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	player, err := sim.NewPlayer(sim.PlayerOptions{
		Config:   cfg,
		Filter:   in.Filter,
		Renderer: render.NewRecorder(),
		Measurer: measurer,
	})
	if err != nil {
		return err
	}
	player.Add(in.Comments...)
	player.Schedule(in.Controls...)

	collector := observe.NewCollector()
	collector.Publish(observe.TakeSnapshot(player))
	if p.MetricsAddr != "" {
		srv, err := observe.NewServer(ctx, p.MetricsAddr, collector)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Close(shutdownCtx); err != nil {
				logrus.Warnf("%v", err)
			}
		}()
		logrus.Infof("Serving metrics on http://%s/metrics", srv.Addr())
	}

	if p.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.For)
		defer cancel()
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / p.FPS))
	defer ticker.Stop()

	player.Play()
	err = player.Run(ctx, ticker.C, readControls(ctx, controls), func(report sim.FrameReport) {
		if n := len(report.Discarded); n > 0 {
			logrus.Debugf("t=%.3f: discarded %d comments", report.Time, n)
		}
		collector.Publish(observe.TakeSnapshot(player))
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	player.Metrics().Print(out)
	return nil
}

// readControls parses control commands from r, one per line, until r is
// exhausted or ctx ends. A nil reader yields a nil channel.
func readControls(ctx context.Context, r io.Reader) <-chan sim.ControlEvent {
	if r == nil {
		return nil
	}
	ch := make(chan sim.ControlEvent)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			ev, err := parseControlLine(line)
			if err != nil {
				logrus.Warnf("Ignoring control %q: %v", line, err)
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// parseControlLine reads "pause", "play", "seek <t> [refresh]" or
// "resize <w> <h>".
func parseControlLine(line string) (sim.ControlEvent, error) {
	fields := strings.Fields(line)
	t, err := sim.ParseControlType(fields[0])
	if err != nil {
		return sim.ControlEvent{}, err
	}
	ev := sim.ControlEvent{Type: t}
	args := fields[1:]
	switch t {
	case sim.ControlSeek:
		if len(args) < 1 || len(args) > 2 {
			return ev, fmt.Errorf("usage: seek <seconds> [refresh]")
		}
		if ev.Target, err = strconv.ParseFloat(args[0], 64); err != nil {
			return ev, fmt.Errorf("seek target: %w", err)
		}
		if len(args) == 2 {
			if args[1] != "refresh" {
				return ev, fmt.Errorf("usage: seek <seconds> [refresh]")
			}
			ev.Refresh = true
		}
	case sim.ControlResize:
		if len(args) != 2 {
			return ev, fmt.Errorf("usage: resize <width> <height>")
		}
		if ev.Width, err = strconv.ParseFloat(args[0], 64); err != nil {
			return ev, fmt.Errorf("resize width: %w", err)
		}
		if ev.Height, err = strconv.ParseFloat(args[1], 64); err != nil {
			return ev, fmt.Errorf("resize height: %w", err)
		}
	default:
		if len(args) != 0 {
			return ev, fmt.Errorf("%s takes no arguments", t)
		}
	}
	return ev, nil
}

func init() {
	playConfig.register(playCmd.Flags())
	playInput.register(playCmd.Flags())

	playCmd.Flags().Float64Var(&playOpts.FPS, "fps", 60, "Display refresh rate")
	playCmd.Flags().DurationVar(&playOpts.For, "for", 0, "Stop after this much wall time (0 = until interrupted)")
	playCmd.Flags().StringVar(&playOpts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics at this address (e.g. :9090)")
	playCmd.Flags().StringVar(&playOpts.Measurer, "measurer", "regular", "Text measurer (regular, mono, em)")
	playCmd.Flags().BoolVar(&playOpts.ReadControls, "controls", false, "Read control commands from stdin")

	rootCmd.AddCommand(playCmd)
}
