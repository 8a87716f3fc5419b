package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
	"github.com/danmaku-sim/danmaku-sim/sim/workload"
)

// inputFlags selects where comments come from: a comment document, a
// workload spec, or a built-in scenario.
type inputFlags struct {
	commentsPath string
	workloadPath string
	scenario     string
	seed         int64
	rate         float64
	horizon      float64
	filterPath   string
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.commentsPath, "comments", "", "Path to a comment document (XML)")
	fs.StringVar(&f.workloadPath, "workload", "", "Path to a workload spec YAML")
	fs.StringVar(&f.scenario, "scenario", "", fmt.Sprintf("Built-in workload scenario %v", workload.ScenarioNames()))
	fs.Int64Var(&f.seed, "seed", 42, "Seed for synthetic comments (overrides the workload spec seed when set)")
	fs.Float64Var(&f.rate, "rate", 10, "Comments per second for --scenario")
	fs.Float64Var(&f.horizon, "workload-horizon", 60, "Media seconds of comments to generate for --scenario")
	fs.StringVar(&f.filterPath, "filter", "", "Path to a display filter YAML")
}

// input is a loaded comment stream with any scripted controls.
type input struct {
	Source   string
	Comments []*sim.Comment
	Controls []sim.ControlEvent
	Document *workload.Document // set when read from a comment document
	Filter   sim.FilterFunc     // nil shows every comment
}

// load reads the selected source. seedChanged reports whether --seed was set
// explicitly, in which case it replaces the workload's own seed.
func (f *inputFlags) load(seedChanged bool) (*input, error) {
	in, err := f.loadSource(seedChanged)
	if err != nil {
		return nil, err
	}
	if f.filterPath != "" {
		fc, err := sim.LoadFilterConfig(f.filterPath)
		if err != nil {
			return nil, err
		}
		in.Filter = fc.Func()
	}
	return in, nil
}

func (f *inputFlags) loadSource(seedChanged bool) (*input, error) {
	sources := 0
	for _, s := range []string{f.commentsPath, f.workloadPath, f.scenario} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of --comments, --workload or --scenario is required")
	}

	if f.commentsPath != "" {
		file, err := os.Open(f.commentsPath)
		if err != nil {
			return nil, fmt.Errorf("opening comment document: %w", err)
		}
		defer func() { _ = file.Close() }()
		doc, err := workload.ParseXML(file)
		if err != nil {
			return nil, err
		}
		logrus.Infof("Loaded %d comments from %s (%d rows skipped)", len(doc.Comments), f.commentsPath, doc.Skipped)
		return &input{Source: f.commentsPath, Comments: doc.Comments, Document: doc}, nil
	}

	var spec *workload.WorkloadSpec
	source := f.workloadPath
	if f.workloadPath != "" {
		loaded, err := workload.LoadWorkloadSpec(f.workloadPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
		if seedChanged {
			spec.Seed = f.seed
		}
	} else {
		s, err := workload.Scenario(f.scenario, f.seed, f.rate, f.horizon)
		if err != nil {
			return nil, err
		}
		spec = s
		source = "scenario:" + f.scenario
	}
	comments, err := workload.GenerateComments(spec)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Generated %d comments from %s (seed %d)", len(comments), source, spec.Seed)
	return &input{Source: source, Comments: comments, Controls: spec.Controls}, nil
}

// mediaExtent returns the last comment start plus the longest lifetime, the
// media time by which every comment has come and gone.
func mediaExtent(comments []*sim.Comment, cfg sim.Config) float64 {
	last, hint := 0.0, 0.0
	for _, c := range comments {
		last = max(last, c.Start)
		hint = max(hint, c.LifetimeHint)
	}
	return last + max(cfg.Duration, hint) + cfg.EvictionGrace
}
