package sim

import "fmt"

// Comment is one ingested comment record. The core treats Start as the
// schedule key and never mutates a Comment after it enters the Timeline.
type Comment struct {
	ID           string  // Unique identifier
	Start        float64 // Scheduled start on the media clock (seconds)
	Mode         Mode    // Motion mode
	Size         int     // Font size in px before scaling
	Color        uint32  // 0xRRGGBB
	LifetimeHint float64 // Visible duration override (seconds); 0 uses Config.Duration
	Highlight    bool    // Highlighted comments get one extra layer

	// Document metadata, carried through untouched.
	Content  string
	PubDate  int64
	Pool     int
	UserHash string
}

func (c Comment) String() string {
	return fmt.Sprintf("Comment: (ID: %s, Start: %.3f, Mode: %s, Size: %d)", c.ID, c.Start, c.Mode, c.Size)
}

// compareStart orders comments by start time.
func compareStart(target, element *Comment) int {
	switch {
	case target.Start < element.Start:
		return -1
	case target.Start > element.Start:
		return 1
	}
	return 0
}
