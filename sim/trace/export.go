package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LogHeader is the YAML metadata written next to a decision log.
type LogHeader struct {
	Version      int     `yaml:"log_version"`
	TimeUnit     string  `yaml:"time_unit"`
	CreatedAt    string  `yaml:"created_at,omitempty"`
	Source       string  `yaml:"source,omitempty"` // comment document or workload spec path
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Reproducible bool    `yaml:"reproducible"`
}

// Decision kinds in the data CSV.
const (
	KindPlaced    = "placed"
	KindDiscarded = "discarded"
	KindEvicted   = "evicted"
)

// LogRow is one row of the decision log CSV. Reason holds the discard reason
// or the eviction cause.
type LogRow struct {
	Kind     string
	EntityID string
	Clock    float64
	Mode     string
	Layer    int
	OffsetY  float64
	Attempts int
	Reason   string
}

var logColumns = []string{
	"kind", "entity_id", "clock", "mode", "layer", "offset_y", "attempts", "reason",
}

// Rows flattens the trace into one clock-ordered stream. Decisions at the
// same clock keep placement, discard, eviction order.
func Rows(st *SimulationTrace) []LogRow {
	if st == nil {
		return nil
	}
	rows := make([]LogRow, 0, len(st.Placements)+len(st.Discards)+len(st.Evictions))
	for _, p := range st.Placements {
		rows = append(rows, LogRow{Kind: KindPlaced, EntityID: p.EntityID, Clock: p.Clock, Mode: p.Mode,
			Layer: p.Layer, OffsetY: p.OffsetY, Attempts: p.Attempts})
	}
	for _, d := range st.Discards {
		rows = append(rows, LogRow{Kind: KindDiscarded, EntityID: d.EntityID, Clock: d.Clock, Mode: d.Mode,
			Attempts: d.Attempts, Reason: d.Reason})
	}
	for _, e := range st.Evictions {
		rows = append(rows, LogRow{Kind: KindEvicted, EntityID: e.EntityID, Clock: e.Clock, Mode: e.Mode,
			Layer: e.Layer, Reason: e.Cause})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Clock < rows[j].Clock })
	return rows
}

// ExportDecisionLog writes the header (YAML) and the decisions (CSV) to
// separate files.
func ExportDecisionLog(header *LogHeader, st *SimulationTrace, headerPath, dataPath string) error {
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling decision log header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing decision log header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating decision log: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteRows(file, Rows(st))
}

// WriteRows writes rows as CSV with a header line.
func WriteRows(w io.Writer, rows []LogRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(logColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range rows {
		row := []string{
			r.Kind,
			r.EntityID,
			strconv.FormatFloat(r.Clock, 'f', -1, 64),
			r.Mode,
			strconv.Itoa(r.Layer),
			strconv.FormatFloat(r.OffsetY, 'f', -1, 64),
			strconv.Itoa(r.Attempts),
			r.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadDecisionLog reads a header (YAML) and its decisions (CSV).
func LoadDecisionLog(headerPath, dataPath string) (*LogHeader, []LogRow, error) {
	headerData, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading decision log header: %w", err)
	}
	var header LogHeader
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return nil, nil, fmt.Errorf("parsing decision log header: %w", err)
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening decision log: %w", err)
	}
	defer func() { _ = file.Close() }()
	rows, err := ReadRows(file)
	if err != nil {
		return nil, nil, err
	}
	return &header, rows, nil
}

// ReadRows parses CSV written by WriteRows.
func ReadRows(r io.Reader) ([]LogRow, error) {
	reader := csv.NewReader(r)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	var rows []LogRow
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) < len(logColumns) {
			return nil, fmt.Errorf("CSV row has %d columns, expected %d", len(row), len(logColumns))
		}
		parsed, err := parseLogRow(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed)
	}
	return rows, nil
}

func parseLogRow(row []string) (LogRow, error) {
	clock, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return LogRow{}, fmt.Errorf("clock %q: %w", row[2], err)
	}
	layer, err := strconv.Atoi(row[4])
	if err != nil {
		return LogRow{}, fmt.Errorf("layer %q: %w", row[4], err)
	}
	offset, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return LogRow{}, fmt.Errorf("offset_y %q: %w", row[5], err)
	}
	attempts, err := strconv.Atoi(row[6])
	if err != nil {
		return LogRow{}, fmt.Errorf("attempts %q: %w", row[6], err)
	}
	return LogRow{
		Kind:     row[0],
		EntityID: row[1],
		Clock:    clock,
		Mode:     row[3],
		Layer:    layer,
		OffsetY:  offset,
		Attempts: attempts,
		Reason:   row[7],
	}, nil
}
