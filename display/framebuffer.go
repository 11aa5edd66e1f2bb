// Package display owns the panel: a double-buffered monochrome
// framebuffer, the SSD1306 command layer, and the update pipeline that
// hands finished frames to the bus engine.
package display

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Panel geometry. The SSD1306 maps each byte to a vertical run of 8
// pixels; a full frame is 8 pages of 128 columns.
const (
	Width  = 128
	Height = 64
	pages  = Height / 8

	// One frame as it streams over the bus: the data control prefix
	// followed by the page bytes, so DMA sends the buffer verbatim.
	frameBytes = 1 + pages*Width
)

// Framebuffer is one frame in the panel's page layout.
//
// It satisfies the drivers.Displayer contract (and the terminal
// package's extension of it), so fonts and the fault console draw into
// it directly. Display is a no-op: presenting a frame is the update
// pipeline's job, not the renderer's.
type Framebuffer struct {
	buf [frameBytes]byte
}

// NewFramebuffer returns a cleared frame with the data prefix staged.
func NewFramebuffer() *Framebuffer {
	fb := &Framebuffer{}
	fb.buf[0] = ctrlData
	return fb
}

// Bytes returns the full transfer image, prefix included.
func (f *Framebuffer) Bytes() []byte { return f.buf[:] }

// Size reports the panel dimensions.
func (f *Framebuffer) Size() (x, y int16) { return Width, Height }

// SetPixel sets one pixel; any non-black color lights it.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	off := 1 + int(y)>>3*Width + int(x)
	bit := byte(1) << (uint(y) & 7)
	if c.R|c.G|c.B != 0 {
		f.buf[off] |= bit
	} else {
		f.buf[off] &^= bit
	}
}

// Display is a no-op; the pipeline owns frame presentation.
func (f *Framebuffer) Display() error { return nil }

// FillRectangle fills a clamped rectangle.
func (f *Framebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clamp(int(x), 0, Width)
	y0 := clamp(int(y), 0, Height)
	x1 := clamp(int(x)+int(width), 0, Width)
	y1 := clamp(int(y)+int(height), 0, Height)
	on := c.R|c.G|c.B != 0
	for py := y0; py < y1; py++ {
		row := 1 + py>>3*Width
		bit := byte(1) << (uint(py) & 7)
		for px := x0; px < x1; px++ {
			if on {
				f.buf[row+px] |= bit
			} else {
				f.buf[row+px] &^= bit
			}
		}
	}
	return nil
}

// Clear blanks the frame.
func (f *Framebuffer) Clear() {
	for i := 1; i < len(f.buf); i++ {
		f.buf[i] = 0
	}
}

// Pixel reports one pixel, for the host window and tests.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return f.buf[1+y>>3*Width+x]&(1<<(uint(y)&7)) != 0
}

func (f *Framebuffer) SetScroll(line int16) {
	_ = line
}

func (f *Framebuffer) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

var _ drivers.Displayer = (*Framebuffer)(nil)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
