// Package textmetrics implements sim.Measurer over real font outlines and a
// cheap fixed-advance estimate.
package textmetrics

import (
	"fmt"
	"math"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// FontMeasurer measures text with an OpenType font. Faces are cached per
// size. Runes the font has no glyph for are one em wide.
type FontMeasurer struct {
	mu    sync.Mutex
	font  *opentype.Font
	buf   sfnt.Buffer
	faces map[float64]font.Face
}

// NewFontMeasurer parses a TrueType or OpenType font.
func NewFontMeasurer(ttf []byte) (*FontMeasurer, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &FontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

// NewGoRegular returns a measurer over the Go Regular font.
func NewGoRegular() (*FontMeasurer, error) {
	return NewFontMeasurer(goregular.TTF)
}

// NewGoMono returns a measurer over the Go Mono font.
func NewGoMono() (*FontMeasurer, error) {
	return NewFontMeasurer(gomono.TTF)
}

// ByName returns the measurer for "regular", "mono" or "em".
func ByName(name string) (sim.Measurer, error) {
	switch name {
	case "", "regular":
		return NewGoRegular()
	case "mono":
		return NewGoMono()
	case "em":
		return FixedAdvance{Narrow: 1, Wide: 1}, nil
	}
	return nil, fmt.Errorf("unknown measurer %q; valid: regular, mono, em", name)
}

func (m *FontMeasurer) face(size float64) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// Measure returns the advance width of content and the em height, both in px.
// A non-positive size measures as zero.
func (m *FontMeasurer) Measure(content string, fontSize float64) (width, height float64) {
	if !(fontSize > 0) {
		return 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(fontSize)
	if err != nil {
		// NaN tells the compositor to fall back to its own estimate.
		return math.NaN(), math.NaN()
	}
	em := fixed.Int26_6(fontSize * 64)
	var adv fixed.Int26_6
	prev, prevHas := rune(-1), false
	for _, r := range content {
		has := m.hasGlyph(r)
		if prevHas && has {
			adv += face.Kern(prev, r)
		}
		a, ok := face.GlyphAdvance(r)
		if !ok || !has {
			a = em
		}
		adv += a
		prev, prevHas = r, has
	}
	return float64(adv) / 64, fontSize
}

func (m *FontMeasurer) hasGlyph(r rune) bool {
	idx, err := m.font.GlyphIndex(&m.buf, r)
	return err == nil && idx != 0
}

// Close releases every cached face.
func (m *FontMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for size, f := range m.faces {
		_ = f.Close()
		delete(m.faces, size)
	}
	return nil
}

// FixedAdvance estimates width from rune classes: CJK and Hangul runes are
// Wide ems, everything else Narrow ems.
type FixedAdvance struct {
	Narrow float64
	Wide   float64
}

var wideTables = []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul}

// Measure returns the summed rune advances times fontSize, and fontSize as
// the height.
func (f FixedAdvance) Measure(content string, fontSize float64) (width, height float64) {
	ems := 0.0
	for _, r := range content {
		if unicode.In(r, wideTables...) {
			ems += f.Wide
		} else {
			ems += f.Narrow
		}
	}
	return ems * fontSize, fontSize
}
