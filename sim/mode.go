package sim

import "fmt"

// Mode is the motion mode of a comment. Numeric values follow the comment
// document wire format.
type Mode int

const (
	ModeUnknown     Mode = 0
	ModeRightToLeft Mode = 1
	ModeBottomToTop Mode = 4
	ModeTopToBottom Mode = 5
	ModeLeftToRight Mode = 6
)

// Modes lists every placeable mode, in lane-table order.
var Modes = []Mode{ModeRightToLeft, ModeLeftToRight, ModeTopToBottom, ModeBottomToTop}

// validModes maps accepted mode names to their values.
var validModes = map[string]Mode{
	"rtl":    ModeRightToLeft,
	"ltr":    ModeLeftToRight,
	"top":    ModeTopToBottom,
	"bottom": ModeBottomToTop,
}

// ParseMode accepts either the wire value or a short name (rtl, ltr, top, bottom).
func ParseMode(s string) (Mode, error) {
	if m, ok := validModes[s]; ok {
		return m, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && Mode(n).Valid() {
		return Mode(n), nil
	}
	return ModeUnknown, fmt.Errorf("unknown mode %q", s)
}

// Valid reports whether m is a placeable mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeRightToLeft, ModeLeftToRight, ModeTopToBottom, ModeBottomToTop:
		return true
	}
	return false
}

// Horizontal reports whether entities in this mode scroll across the canvas.
func (m Mode) Horizontal() bool {
	return m == ModeRightToLeft || m == ModeLeftToRight
}

func (m Mode) String() string {
	switch m {
	case ModeRightToLeft:
		return "rtl"
	case ModeLeftToRight:
		return "ltr"
	case ModeTopToBottom:
		return "top"
	case ModeBottomToTop:
		return "bottom"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}
