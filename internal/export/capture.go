// Package export writes grid frames out of the interactive loop: single SVG
// and PNG stills, looping APNG animations, numbered PNG sequences and videos
// encoded by a remote conversion server.
package export

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrBusy is returned when an export is started while another runs.
	ErrBusy = errors.New("export already in progress")
	// ErrNoFrames is returned when an animation export has nothing to write.
	ErrNoFrames = errors.New("no frames captured")
)

// Frame is one captured image tagged with its position in the loop.
type Frame struct {
	Index int
	Image image.Image
}

// FrameName returns the file name used for frame i in sequences and uploads.
func FrameName(i int) string { return fmt.Sprintf("frame_%06d.png", i) }

// Capture accumulates the frames of one loop. Its counter, not the wall clock
// or the display frame count, decides which noise frame is rendered next, so
// a stalled display never desynchronises the export from the loop length.
type Capture struct {
	total  int
	frames []Frame
}

// NewCapture prepares a capture of total frames.
func NewCapture(total int) *Capture {
	if total < 0 {
		total = 0
	}
	return &Capture{total: total, frames: make([]Frame, 0, total)}
}

// Next returns the index of the frame to render next.
func (c *Capture) Next() int { return len(c.frames) }

// Total returns the number of frames the capture expects.
func (c *Capture) Total() int { return c.total }

// Len returns the number of frames captured so far.
func (c *Capture) Len() int { return len(c.frames) }

// Done reports whether every frame has been captured.
func (c *Capture) Done() bool { return len(c.frames) >= c.total }

// Add records img as the next frame. Frames past the total are dropped. It
// reports whether the capture is complete.
func (c *Capture) Add(img image.Image) bool {
	if c.Done() {
		return true
	}
	c.frames = append(c.frames, Frame{Index: len(c.frames), Image: img})
	return c.Done()
}

// Percent returns the capture progress in [0, 100].
func (c *Capture) Percent() float64 {
	if c.total == 0 {
		return 100
	}
	return 100 * float64(len(c.frames)) / float64(c.total)
}

// Frames returns the captured frames in order.
func (c *Capture) Frames() []Frame { return c.frames }

// Reset discards every frame and rewinds the counter.
func (c *Capture) Reset() {
	clear(c.frames)
	c.frames = c.frames[:0]
}
