package sim

// Renderer turns placement decisions into visible output. The compositor calls
// it synchronously from its single thread of control; implementations must not
// mutate the entities they are handed.
type Renderer interface {
	// Place receives entities that were laid out during this frame.
	Place(now float64, placed []*Entity)
	// Evict receives entities whose lifetime has ended or that were torn down by a seek.
	Evict(evicted []*Entity)
	// SetPaused signals play/pause transitions.
	SetPaused(paused bool)
	// Repaint asks for every active entity to be redrawn at now, after a seek or resize.
	Repaint(now float64, active []*Entity)
}

// NopRenderer discards every callback.
type NopRenderer struct{}

func (NopRenderer) Place(float64, []*Entity)   {}
func (NopRenderer) Evict([]*Entity)            {}
func (NopRenderer) SetPaused(bool)             {}
func (NopRenderer) Repaint(float64, []*Entity) {}
