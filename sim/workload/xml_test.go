package workload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

func TestParseXML_SampleDocument(t *testing.T) {
	// GIVEN a document with metadata, valid rows and malformed rows
	f, err := os.Open(filepath.Join("testdata", "sample.xml"))
	require.NoError(t, err)
	defer f.Close()

	// WHEN parsed
	doc, err := ParseXML(f)
	require.NoError(t, err)

	// THEN metadata is read
	assert.Equal(t, "chat.example.com", doc.ChatServer)
	assert.Equal(t, "170001", doc.ChatID)
	assert.Equal(t, 1500, doc.MaxLimit)
	assert.Equal(t, 3000, doc.MaxCount)
	assert.Equal(t, "k-v", doc.Source)

	// AND rows with too few fields, bad numbers or empty text are skipped
	assert.Equal(t, 3, doc.Skipped)
	require.Len(t, doc.Comments, 5)

	first := doc.Comments[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, 0.5, first.Start)
	assert.Equal(t, sim.ModeRightToLeft, first.Mode)
	assert.Equal(t, 25, first.Size)
	assert.Equal(t, uint32(0xffffff), first.Color)
	assert.Equal(t, int64(1700000000), first.PubDate)
	assert.Equal(t, "a1b2c3d4", first.UserHash)
	assert.Equal(t, "first!", first.Content)

	assert.Equal(t, sim.ModeTopToBottom, doc.Comments[1].Mode)
	assert.Equal(t, sim.ModeBottomToTop, doc.Comments[2].Mode)
	assert.Equal(t, 1, doc.Comments[2].Pool)
	assert.Equal(t, sim.ModeLeftToRight, doc.Comments[3].Mode)

	// AND an unknown mode is kept for the timeline to reject
	tl := sim.NewTimeline(nil)
	added, rejected := tl.Add(doc.Comments...)
	assert.Equal(t, 4, added)
	assert.Equal(t, 1, rejected)
}

func TestParseXML_StripsControlCharacters(t *testing.T) {
	in := "<i><d p=\"1,1,25,0,0,0,u,x\">he\x01llo\x7f</d></i>"

	doc, err := ParseXML(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, doc.Comments, 1)
	assert.Equal(t, "hello", doc.Comments[0].Content)
}

func TestParseXML_MalformedDocument(t *testing.T) {
	_, err := ParseXML(strings.NewReader("<i><d p=\"1,1\">unterminated"))
	assert.Error(t, err)
}

func TestParseXML_MissingIDGetsRowIndex(t *testing.T) {
	in := `<i><d p="1,1,25,0,0,0,u,">a</d><d p="2,1,25,0,0,0,u,">b</d></i>`

	doc, err := ParseXML(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, doc.Comments, 2)
	assert.Equal(t, "row_0", doc.Comments[0].ID)
	assert.Equal(t, "row_1", doc.Comments[1].ID)
}

func TestWriteXML_ParsesBack(t *testing.T) {
	// GIVEN a generated document
	doc := &Document{
		ChatID:   "42",
		MaxLimit: 100,
		Comments: []*sim.Comment{
			{ID: "c0", Start: 1.5, Mode: sim.ModeRightToLeft, Size: 25, Color: 0xff00ff, PubDate: 1700000000, UserHash: "u1", Content: "hello <world> & co"},
			{ID: "c1", Start: 2.25, Mode: sim.ModeTopToBottom, Size: 18, Color: 1, PubDate: 1700000001, Pool: 1, UserHash: "u2", Content: "弹幕"},
		},
	}

	// WHEN written and read back
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, doc))
	got, err := ParseXML(&buf)

	// THEN every field survives, including escaped text
	require.NoError(t, err)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, 100, got.MaxLimit)
	assert.Zero(t, got.Skipped)
	assert.Equal(t, doc.Comments, got.Comments)
}

func TestParseXML_NonFiniteOrHugeSize_Skipped(t *testing.T) {
	// GIVEN rows whose size parses as a float but is not a usable font size
	in := `<i>
  <d p="1,1,NaN,0,0,0,u,a">nan</d>
  <d p="1,1,Inf,0,0,0,u,b">inf</d>
  <d p="1,1,-Inf,0,0,0,u,c">neg inf</d>
  <d p="1,1,1e30,0,0,0,u,d">huge</d>
  <d p="1,1,-3,0,0,0,u,e">negative</d>
  <d p="1,1,25.6,0,0,0,u,f">ok</d>
</i>`

	// WHEN parsed
	doc, err := ParseXML(strings.NewReader(in))
	require.NoError(t, err)

	// THEN only the sane row survives
	assert.Equal(t, 5, doc.Skipped)
	require.Len(t, doc.Comments, 1)
	assert.Equal(t, "f", doc.Comments[0].ID)
	assert.Equal(t, 25, doc.Comments[0].Size)
}
