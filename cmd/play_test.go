package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
)

func TestParseControlLine(t *testing.T) {
	tests := []struct {
		line    string
		want    sim.ControlEvent
		wantErr bool
	}{
		{line: "pause", want: sim.ControlEvent{Type: sim.ControlPause}},
		{line: "play", want: sim.ControlEvent{Type: sim.ControlPlay}},
		{line: "seek 12.5", want: sim.ControlEvent{Type: sim.ControlSeek, Target: 12.5}},
		{line: "seek 3 refresh", want: sim.ControlEvent{Type: sim.ControlSeek, Target: 3, Refresh: true}},
		{line: "resize 640 360", want: sim.ControlEvent{Type: sim.ControlResize, Width: 640, Height: 360}},
		{line: "rewind", wantErr: true},
		{line: "seek", wantErr: true},
		{line: "seek x", wantErr: true},
		{line: "seek 3 now", wantErr: true},
		{line: "resize 640", wantErr: true},
		{line: "pause 1", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			got, err := parseControlLine(tc.line)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadControls_SkipsBadLinesAndCloses(t *testing.T) {
	ch := readControls(context.Background(), strings.NewReader("pause\n\nbogus\nseek 4\n"))

	var got []sim.ControlType
	for ev := range ch {
		got = append(got, ev.Type)
	}

	assert.Equal(t, []sim.ControlType{sim.ControlPause, sim.ControlSeek}, got)
}

func TestReadControls_NilReader(t *testing.T) {
	assert.Nil(t, readControls(context.Background(), nil))
}

func TestRunPlayback_StopsAfterFor(t *testing.T) {
	// GIVEN a short real-time playback with controls on the input
	in := testRunInput(t)
	p := playParams{FPS: 100, For: 150 * time.Millisecond, Measurer: "em"}
	var out bytes.Buffer

	// WHEN played
	start := time.Now()
	err := runPlayback(context.Background(), testRunConfig(), in, p, strings.NewReader("pause\nplay\nseek 1\n"), &out)

	// THEN it returns cleanly once the duration is up and prints the summary
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Contains(t, out.String(), "Compositor Metrics")
}

func TestRunPlayback_BadFrameRate(t *testing.T) {
	err := runPlayback(context.Background(), testRunConfig(), testRunInput(t), playParams{FPS: 0}, nil, &bytes.Buffer{})
	assert.Error(t, err)
}
