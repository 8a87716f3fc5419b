package workload

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// rowFields is the minimum number of comma-separated fields in a row's p attribute:
// start, mode, size, color, pubDate, pool, userHash, id.
const rowFields = 8

// maxFontSize bounds the size field; larger values are treated as malformed.
const maxFontSize = 4096

// Document is a parsed comment document: channel metadata plus its rows.
type Document struct {
	ChatServer string
	ChatID     string
	Mission    string
	MaxLimit   int
	Source     string
	DS         string
	DE         string
	MaxCount   int
	Comments   []*sim.Comment
	Skipped    int // rows dropped as malformed
}

type xmlDocument struct {
	XMLName    xml.Name
	ChatServer string   `xml:"chatserver,omitempty"`
	ChatID     string   `xml:"chatid,omitempty"`
	Mission    string   `xml:"mission,omitempty"`
	MaxLimit   string   `xml:"maxlimit,omitempty"`
	Source     string   `xml:"source,omitempty"`
	DS         string   `xml:"ds,omitempty"`
	DE         string   `xml:"de,omitempty"`
	MaxCount   string   `xml:"max_count,omitempty"`
	Rows       []xmlRow `xml:"d"`
}

type xmlRow struct {
	P    string `xml:"p,attr"`
	Text string `xml:",chardata"`
}

// stripControl removes C0 control characters other than tab, LF and CR, and DEL.
// They are invalid in XML 1.0 and common in scraped documents.
func stripControl(data []byte) []byte {
	return bytes.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, data)
}

// ParseXML reads a comment document. Rows with fewer than eight p fields,
// unparsable numbers or empty text are skipped and counted; only a document
// that is not well-formed XML is an error.
func ParseXML(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading comment document: %w", err)
	}
	var raw xmlDocument
	if err := xml.Unmarshal(stripControl(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing comment document: %w", err)
	}

	doc := &Document{
		ChatServer: raw.ChatServer,
		ChatID:     raw.ChatID,
		Mission:    raw.Mission,
		MaxLimit:   parseOptionalInt("maxlimit", raw.MaxLimit),
		Source:     raw.Source,
		DS:         raw.DS,
		DE:         raw.DE,
		MaxCount:   parseOptionalInt("max_count", raw.MaxCount),
		Comments:   make([]*sim.Comment, 0, len(raw.Rows)),
	}
	for i, row := range raw.Rows {
		c, err := parseRow(row)
		if err != nil {
			logrus.Debugf("comment document: skipping row %d: %v", i, err)
			doc.Skipped++
			continue
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("row_%d", i)
		}
		doc.Comments = append(doc.Comments, c)
	}
	if doc.Skipped > 0 {
		logrus.Infof("comment document: skipped %d of %d rows", doc.Skipped, len(raw.Rows))
	}
	return doc, nil
}

func parseOptionalInt(name, s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logrus.Debugf("comment document: ignoring %s %q: %v", name, s, err)
		return 0
	}
	return v
}

func parseRow(row xmlRow) (*sim.Comment, error) {
	if row.Text == "" {
		return nil, fmt.Errorf("empty text")
	}
	fields := strings.Split(row.P, ",")
	if len(fields) < rowFields {
		return nil, fmt.Errorf("p has %d fields, need %d", len(fields), rowFields)
	}
	start, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	mode, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("mode: %w", err)
	}
	size, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	if math.IsNaN(size) || size < 0 || size > maxFontSize {
		return nil, fmt.Errorf("size %q out of range [0, %d]", fields[2], maxFontSize)
	}
	color, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("color: %w", err)
	}
	pubDate, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("pubDate: %w", err)
	}
	pool, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	return &sim.Comment{
		ID:       fields[7],
		Start:    start,
		Mode:     sim.Mode(mode),
		Size:     int(size),
		Color:    uint32(color),
		Content:  row.Text,
		PubDate:  pubDate,
		Pool:     pool,
		UserHash: fields[6],
	}, nil
}

// WriteXML writes doc in the same format ParseXML reads.
func WriteXML(w io.Writer, doc *Document) error {
	raw := xmlDocument{
		XMLName:    xml.Name{Local: "i"},
		ChatServer: doc.ChatServer,
		ChatID:     doc.ChatID,
		Mission:    doc.Mission,
		Source:     doc.Source,
		DS:         doc.DS,
		DE:         doc.DE,
		Rows:       make([]xmlRow, len(doc.Comments)),
	}
	if doc.MaxLimit > 0 {
		raw.MaxLimit = strconv.Itoa(doc.MaxLimit)
	}
	if doc.MaxCount > 0 {
		raw.MaxCount = strconv.Itoa(doc.MaxCount)
	}
	for i, c := range doc.Comments {
		raw.Rows[i] = xmlRow{
			P: strings.Join([]string{
				strconv.FormatFloat(c.Start, 'f', -1, 64),
				strconv.Itoa(int(c.Mode)),
				strconv.Itoa(c.Size),
				strconv.FormatUint(uint64(c.Color), 10),
				strconv.FormatInt(c.PubDate, 10),
				strconv.Itoa(c.Pool),
				c.UserHash,
				c.ID,
			}, ","),
			Text: c.Content,
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("writing comment document: %w", err)
	}
	return enc.Flush()
}
