package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/danmaku-sim/danmaku-sim/sim/trace"
)

// printTraceSummary writes the decision trace aggregates as a table.
func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Decision Trace")
	tw.AppendHeader(table.Row{"Decision", "Count"})
	tw.AppendRows([]table.Row{
		{"Total decisions", humanize.Comma(int64(s.TotalDecisions))},
		{"Placed", humanize.Comma(int64(s.PlacedCount))},
		{"Discarded", humanize.Comma(int64(s.DiscardedCount))},
		{"Evicted", humanize.Comma(int64(s.EvictedCount))},
		{"Mean / max attempts", fmt.Sprintf("%.2f / %d", s.MeanAttempts, s.MaxAttempts)},
	})
	if len(s.EvictionCauses) > 0 {
		tw.AppendSeparator()
		for _, cause := range sortedKeys(s.EvictionCauses) {
			tw.AppendRow(table.Row{"evicted: " + cause, humanize.Comma(int64(s.EvictionCauses[cause]))})
		}
	}
	if len(s.DiscardReasons) > 0 {
		tw.AppendSeparator()
		for _, reason := range sortedKeys(s.DiscardReasons) {
			tw.AppendRow(table.Row{"discarded: " + reason, humanize.Comma(int64(s.DiscardReasons[reason]))})
		}
	}
	tw.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
