package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
	"github.com/danmaku-sim/danmaku-sim/sim/observe"
	"github.com/danmaku-sim/danmaku-sim/sim/render"
	"github.com/danmaku-sim/danmaku-sim/sim/textmetrics"
	"github.com/danmaku-sim/danmaku-sim/sim/trace"
)

var (
	runConfig configFlags
	runInput  inputFlags
	runOpts   runParams
)

// runParams holds everything a headless run needs besides config and input.
type runParams struct {
	FPS         float64 // simulated display refresh rate
	HostSeconds float64 // host time to simulate; 0 runs until every comment has left
	Measurer    string
	TraceLevel  string
	TraceOut    string // decision log prefix: <prefix>.yaml and <prefix>.csv
	MetricsOut  string // Prometheus textfile path
	Snapshot    string // SVG snapshot path
	SnapshotAt  float64
}

// runResult is what a headless run leaves behind.
type runResult struct {
	Player   *sim.Player
	Trace    *trace.SimulationTrace
	Recorder *render.Recorder
	Frames   int
}

// runCmd executes a deterministic headless simulation at a fixed frame rate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless layout simulation at a fixed frame rate",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := runConfig.resolve(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		in, err := runInput.load(cmd.Flags().Changed("seed"))
		if err != nil {
			logrus.Fatalf("Failed to load comments: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logrus.Infof("Starting simulation: canvas=%vx%v duration=%vs layers=%d fps=%v",
			cfg.CanvasW, cfg.CanvasH, cfg.Duration, cfg.OpenLayers, runOpts.FPS)
		startTime := time.Now()
		if _, err := runSimulation(ctx, cfg, in, runOpts, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// runSimulation drives a Player through in's comments and writes the
// summary to out, plus any requested artifacts.
func runSimulation(ctx context.Context, cfg sim.Config, in *input, p runParams, out io.Writer) (*runResult, error) {
	if !trace.IsValidTraceLevel(p.TraceLevel) {
		return nil, fmt.Errorf("unknown trace level %q; valid: none, decisions", p.TraceLevel)
	}
	measurer, err := textmetrics.ByName(p.Measurer)
	if err != nil {
		return nil, err
	}
	if closer, ok := measurer.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	level := trace.TraceLevel(p.TraceLevel)
	if level == "" {
		level = trace.TraceLevelNone
	}
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	rec := render.NewRecorder()
	player, err := sim.NewPlayer(sim.PlayerOptions{
		Config:   cfg,
		Filter:   in.Filter,
		Renderer: rec,
		Measurer: measurer,
		Trace:    st,
	})
	if err != nil {
		return nil, err
	}
	added, rejected := player.Add(in.Comments...)
	if rejected > 0 {
		logrus.Warnf("Rejected %d of %d comments (unknown mode or bad start)", rejected, added+rejected)
	}
	player.Schedule(in.Controls...)
	player.Play()

	hostSeconds := p.HostSeconds
	if hostSeconds <= 0 {
		hostSeconds = mediaExtent(in.Comments, cfg)
	}

	res := &runResult{Player: player, Trace: st, Recorder: rec}
	snapshotTaken := p.Snapshot == ""
	var snapshotErr error
	err = player.Simulate(ctx, hostSeconds, p.FPS, func(report sim.FrameReport) {
		res.Frames++
		if !snapshotTaken && report.Time >= p.SnapshotAt {
			snapshotTaken = true
			snapshotErr = writeSnapshot(p.Snapshot, player, rec)
		}
	})
	if err != nil {
		return nil, err
	}
	if snapshotErr != nil {
		return nil, snapshotErr
	}
	if !snapshotTaken {
		logrus.Warnf("Snapshot time %vs never reached; no snapshot written", p.SnapshotAt)
	}

	player.Metrics().Print(out)
	if st.Enabled() {
		printTraceSummary(out, trace.Summarize(st))
	}

	if p.TraceOut != "" {
		header := &trace.LogHeader{
			Version:      1,
			TimeUnit:     "s",
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Source:       in.Source,
			Width:        cfg.CanvasW,
			Height:       cfg.CanvasH,
			Reproducible: cfg.Reproducible,
		}
		if err := trace.ExportDecisionLog(header, st, p.TraceOut+".yaml", p.TraceOut+".csv"); err != nil {
			return nil, err
		}
		logrus.Infof("Decision log written to %s.{yaml,csv}", p.TraceOut)
	}
	if p.MetricsOut != "" {
		collector := observe.NewCollector()
		collector.Publish(observe.TakeSnapshot(player))
		if err := observe.WriteTextfile(p.MetricsOut, collector); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeSnapshot(path string, player *sim.Player, rec *render.Recorder) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer func() { _ = file.Close() }()
	cfg := player.Compositor().Config()
	opts := render.DefaultSVGOptions(cfg.CanvasW, cfg.CanvasH)
	if err := render.WriteSVG(file, opts, player.CurrentTime(), rec.Active()); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	logrus.Infof("Snapshot of %d entities at t=%.3f written to %s", rec.Len(), player.CurrentTime(), path)
	return nil
}

func init() {
	runConfig.register(runCmd.Flags())
	runInput.register(runCmd.Flags())

	runCmd.Flags().Float64Var(&runOpts.FPS, "fps", 60, "Simulated display refresh rate")
	runCmd.Flags().Float64Var(&runOpts.HostSeconds, "horizon", 0, "Host seconds to simulate (0 = until every comment has left)")
	runCmd.Flags().StringVar(&runOpts.Measurer, "measurer", "regular", "Text measurer (regular, mono, em)")
	runCmd.Flags().StringVar(&runOpts.TraceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&runOpts.TraceOut, "trace-out", "", "Write the decision log to <prefix>.yaml and <prefix>.csv (needs --trace-level decisions)")
	runCmd.Flags().StringVar(&runOpts.MetricsOut, "metrics-out", "", "Write final metrics as a Prometheus textfile")
	runCmd.Flags().StringVar(&runOpts.Snapshot, "snapshot", "", "Write an SVG snapshot of the screen")
	runCmd.Flags().Float64Var(&runOpts.SnapshotAt, "snapshot-at", 0, "Media time (seconds) of the snapshot")

	rootCmd.AddCommand(runCmd)
}
