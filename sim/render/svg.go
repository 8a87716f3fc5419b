package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// SVGOptions controls snapshot styling.
type SVGOptions struct {
	Width      float64
	Height     float64
	Background string // fill color; empty means transparent
	FontFamily string
}

// DefaultSVGOptions returns options for a canvas of the given size.
func DefaultSVGOptions(width, height float64) SVGOptions {
	return SVGOptions{
		Width:      width,
		Height:     height,
		Background: "#000000",
		FontFamily: "sans-serif",
	}
}

// ScreenPosition maps an entity's layout to canvas coordinates at now.
// Left-to-right comments are mirrored and bottom lane offsets count up from
// the bottom edge.
func ScreenPosition(e *sim.Entity, now, width, height float64) (x, y float64) {
	r := e.ScreenRect(now, width, height)
	return r.X, r.Y
}

// WriteSVG draws entities at now, one text node per entity. Highlighted
// entities get an outline box.
func WriteSVG(w io.Writer, opts SVGOptions, now float64, entities []*sim.Entity) error {
	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%g" height="%g" xmlns="http://www.w3.org/2000/svg">
`, opts.Width, opts.Height))
	if opts.Background != "" {
		svg.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, escapeXML(opts.Background)))
	}
	for _, e := range entities {
		x, y := ScreenPosition(e, now, opts.Width, opts.Height)
		if e.Comment.Highlight {
			svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#66ccff"/>
`, x, y, e.Width, e.Height))
		}
		svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" data-id="%s" data-layer="%d" font-family="%s" font-size="%g" fill="#%06x">%s</text>
`, x, y+e.FontSize, escapeXML(e.Comment.ID), e.Layer(), escapeXML(opts.FontFamily), e.FontSize, e.Comment.Color&0xffffff, escapeXML(e.Comment.Content)))
	}
	svg.WriteString("</svg>\n")

	_, err := io.WriteString(w, svg.String())
	return err
}

// WriteSVG draws the recorder's visible set at its last clock.
func (r *Recorder) WriteSVG(w io.Writer, opts SVGOptions) error {
	return WriteSVG(w, opts, r.Now, r.Active())
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
