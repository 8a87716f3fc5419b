package sim

import (
	"math"
	"unicode/utf8"
)

// Measurer reports the advance width and em height (px) of content rendered at
// fontSize. Entity height is the em height times Config.LineHeight.
type Measurer interface {
	Measure(content string, fontSize float64) (width, height float64)
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(content string, fontSize float64) (width, height float64)

// Measure calls f.
func (f MeasureFunc) Measure(content string, fontSize float64) (float64, float64) {
	return f(content, fontSize)
}

// EmMeasurer assumes every rune is one em wide. It is the fallback whenever a
// measurer is missing or reports unusable geometry.
var EmMeasurer = MeasureFunc(func(content string, fontSize float64) (float64, float64) {
	return float64(utf8.RuneCountInString(content)) * fontSize, fontSize
})

func validExtent(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
