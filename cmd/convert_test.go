package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmaku-sim/danmaku-sim/sim/workload"
)

func TestWriteSpec_LoadsBack(t *testing.T) {
	// GIVEN a scenario written as YAML
	spec, err := workload.Scenario("mixed-modes", 5, 10, 30)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, writeSpec(&buf, spec))

	// WHEN loaded strictly
	loaded, err := workload.LoadWorkloadSpec(writeFile(t, "spec.yaml", buf.String()))

	// THEN it validates and generates the same stream
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	want, err := workload.GenerateComments(spec)
	require.NoError(t, err)
	got, err := workload.GenerateComments(loaded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteDocument_GeneratedComments(t *testing.T) {
	in := testRunInput(t)
	var buf bytes.Buffer

	require.NoError(t, writeDocument(&buf, in, "4242"))
	doc, err := workload.ParseXML(&buf)

	require.NoError(t, err)
	assert.Equal(t, "4242", doc.ChatID)
	assert.Equal(t, len(in.Comments), doc.MaxLimit)
	assert.Len(t, doc.Comments, len(in.Comments))
	assert.Zero(t, doc.Skipped)
}
