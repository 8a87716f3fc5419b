package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterConfig_Func(t *testing.T) {
	fc := &FilterConfig{
		BlockModes:    []string{"bottom", "6"},
		BlockUsers:    []string{"deadbeef"},
		BlockKeywords: []string{"SPOILER"},
		MinSize:       12,
		MaxSize:       40,
	}
	require.NoError(t, fc.Validate())
	show := fc.Func()
	require.NotNil(t, show)

	tests := []struct {
		name    string
		comment Comment
		want    bool
	}{
		{"plain scroller", Comment{Mode: ModeRightToLeft, Size: 25, Content: "hello"}, true},
		{"blocked mode by name", Comment{Mode: ModeBottomToTop, Size: 25}, false},
		{"blocked mode by value", Comment{Mode: ModeLeftToRight, Size: 25}, false},
		{"blocked user", Comment{Mode: ModeRightToLeft, Size: 25, UserHash: "deadbeef"}, false},
		{"keyword is case-insensitive", Comment{Mode: ModeRightToLeft, Size: 25, Content: "big spoiler ahead"}, false},
		{"too small", Comment{Mode: ModeRightToLeft, Size: 10}, false},
		{"too large", Comment{Mode: ModeRightToLeft, Size: 64}, false},
		{"size bounds are inclusive", Comment{Mode: ModeTopToBottom, Size: 40}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, show(&tt.comment))
		})
	}
}

func TestFilterConfig_HighlightOnly(t *testing.T) {
	show := (&FilterConfig{HighlightOnly: true}).Func()

	assert.True(t, show(&Comment{Mode: ModeRightToLeft, Highlight: true}))
	assert.False(t, show(&Comment{Mode: ModeRightToLeft}))
}

func TestFilterConfig_EmptyCompilesToNil(t *testing.T) {
	var nilConfig *FilterConfig
	assert.Nil(t, nilConfig.Func())
	assert.Nil(t, (&FilterConfig{}).Func())
}

func TestFilterConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		fc   FilterConfig
	}{
		{"unknown mode", FilterConfig{BlockModes: []string{"diagonal"}}},
		{"negative min", FilterConfig{MinSize: -1}},
		{"negative max", FilterConfig{MaxSize: -1}},
		{"inverted bounds", FilterConfig{MinSize: 30, MaxSize: 20}},
		{"empty keyword", FilterConfig{BlockKeywords: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.fc.Validate())
		})
	}
}

func TestLoadFilterConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	// GIVEN a well-formed file
	fc, err := LoadFilterConfig(write("ok.yaml", "block_modes: [top]\nmin_size: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"top"}, fc.BlockModes)
	assert.Equal(t, 10, fc.MinSize)

	// GIVEN an empty file THEN nothing is filtered
	fc, err = LoadFilterConfig(write("empty.yaml", ""))
	require.NoError(t, err)
	assert.True(t, fc.Empty())

	// GIVEN a misspelled key THEN loading fails
	_, err = LoadFilterConfig(write("typo.yaml", "block_mode: [top]\n"))
	assert.Error(t, err)

	// GIVEN an invalid value THEN loading fails validation
	_, err = LoadFilterConfig(write("bad.yaml", "block_modes: [sideways]\n"))
	assert.Error(t, err)

	// GIVEN a missing file
	_, err = LoadFilterConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

// TestFilter_HiddenCommentsStayInTimeline verifies that filtered comments are
// never placed but are kept for later.
func TestFilter_HiddenCommentsStayInTimeline(t *testing.T) {
	show := (&FilterConfig{BlockModes: []string{"top"}}).Func()
	tl := NewTimeline(show)
	added, _ := tl.Add(
		&Comment{ID: "a", Start: 0.1, Mode: ModeRightToLeft, Size: 25},
		&Comment{ID: "b", Start: 0.2, Mode: ModeTopToBottom, Size: 25},
	)
	require.Equal(t, 2, added)

	due := tl.Due(0, 1)

	require.Len(t, due, 1)
	assert.Equal(t, "a", due[0].ID)
	assert.Equal(t, 2, tl.Len())
}
