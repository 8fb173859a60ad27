package mirror

// History is a bounded FIFO of observer poses used for delayed playback.
// Index Len()-1 is the most recent entry.
type History struct {
	buf   []Pose
	start int
	size  int
}

// NewHistory creates an empty history holding at most capacity poses.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Pose, capacity)}
}

// Record appends pose, evicting the oldest entry once full.
func (h *History) Record(pose Pose) {
	c := len(h.buf)
	if h.size < c {
		h.buf[(h.start+h.size)%c] = pose
		h.size++
		return
	}
	h.buf[h.start] = pose
	h.start = (h.start + 1) % c
}

// Peek returns the pose framesBack entries before the most recent one. Requests
// past the oldest entry clamp to it. ok is false only when the history is empty.
func (h *History) Peek(framesBack int) (Pose, bool) {
	if h.size == 0 {
		return Pose{}, false
	}
	if framesBack < 0 {
		framesBack = 0
	}
	idx := h.size - 1 - framesBack
	if idx < 0 {
		idx = 0
	}
	return h.buf[(h.start+idx)%len(h.buf)], true
}

// Len returns the number of recorded poses.
func (h *History) Len() int { return h.size }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.buf) }
