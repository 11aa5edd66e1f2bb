package display

import (
	"image/color"
	"testing"

	"quartz/bus"
	"quartz/hal"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func TestFramebufferPixelLayout(t *testing.T) {
	fb := NewFramebuffer()
	if got := fb.Bytes(); len(got) != 1025 || got[0] != 0x40 {
		t.Fatalf("expected a prefixed 1025 byte frame, got %d bytes, prefix %#x", len(got), got[0])
	}

	fb.SetPixel(0, 0, white)
	fb.SetPixel(127, 63, white)
	if !fb.Pixel(0, 0) || !fb.Pixel(127, 63) {
		t.Fatal("expected both corners lit")
	}
	if fb.Bytes()[1] != 0x01 {
		t.Fatalf("expected page 0 column 0 = 01, got %#x", fb.Bytes()[1])
	}
	if fb.Bytes()[1+7*128+127] != 0x80 {
		t.Fatalf("expected page 7 column 127 = 80, got %#x", fb.Bytes()[1+7*128+127])
	}

	fb.SetPixel(-1, 0, white)
	fb.SetPixel(128, 0, white)
	fb.SetPixel(0, 64, white)

	fb.SetPixel(0, 0, black)
	if fb.Pixel(0, 0) {
		t.Fatal("expected the pixel cleared")
	}

	fb.Clear()
	if fb.Pixel(127, 63) {
		t.Fatal("expected the frame blanked")
	}
	if fb.Bytes()[0] != 0x40 {
		t.Fatal("expected the data prefix to survive Clear")
	}
}

func TestFramebufferFillRectangleClamps(t *testing.T) {
	fb := NewFramebuffer()
	if err := fb.FillRectangle(-5, -5, 10, 10, white); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !fb.Pixel(0, 0) || !fb.Pixel(4, 4) {
		t.Fatal("expected the clamped corner filled")
	}
	if fb.Pixel(5, 0) || fb.Pixel(0, 5) {
		t.Fatal("expected the fill to stop at the clamped edge")
	}

	fb.Clear()
	fb.FillRectangle(10, 10, 8, 8, white)
	if !fb.Pixel(10, 10) || !fb.Pixel(17, 17) {
		t.Fatal("expected the rectangle filled")
	}
	if fb.Pixel(9, 10) || fb.Pixel(18, 10) {
		t.Fatal("expected the rectangle bounded")
	}
}

type panelRig struct {
	ic    *hal.Vectors
	sb    *hal.SimBus
	eng   *bus.Engine
	model *hal.SSD1306Model
}

func newPanelRig(t *testing.T) *panelRig {
	t.Helper()
	ic := hal.NewVectors()
	sb := hal.NewSimBus(ic, hal.LineI2CEvent, hal.LineDMADone, false)
	eng := bus.New(sb, ic, 5, 3)
	for _, line := range []hal.IRQ{hal.LineI2CEvent, hal.LineDMADone} {
		if err := ic.Attach(line, 5, eng.Advance); err != nil {
			t.Fatalf("attach line %d: %v", line, err)
		}
		ic.Enable(line)
	}
	model := hal.NewSSD1306Model()
	sb.AttachDevice(DefaultAddr, model)
	return &panelRig{ic: ic, sb: sb, eng: eng, model: model}
}

func TestControllerBringUp(t *testing.T) {
	r := newPanelRig(t)
	blk := bus.NewBlocking(r.eng)

	ctrl := NewController(blk, DefaultAddr)
	if err := ctrl.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !r.model.On() {
		t.Fatal("expected the panel on after bring-up")
	}
}

func TestControllerSurfacesTransportError(t *testing.T) {
	r := newPanelRig(t)
	blk := bus.NewBlocking(r.eng)

	ctrl := NewController(blk, 0x3D)
	if err := ctrl.Configure(); err != bus.ErrBusFault {
		t.Fatalf("expected ErrBusFault from an absent panel, got %v", err)
	}
}

func TestPipelinePresentsComposedFrame(t *testing.T) {
	r := newPanelRig(t)
	composed := 0
	p := NewPipeline(r.eng, r.ic, 5, DefaultAddr, func(fb *Framebuffer) {
		composed++
		fb.Clear()
		fb.SetPixel(5, 9, white)
	})

	p.Run()
	if composed != 1 {
		t.Fatalf("expected 1 composition, got %d", composed)
	}
	if p.Swaps() != 1 {
		t.Fatalf("expected the swap, got %d", p.Swaps())
	}

	r.sb.Step()
	r.sb.Step()
	if p.Frames() != 1 {
		t.Fatalf("expected 1 presented frame, got %d", p.Frames())
	}
	if p.Panel() != PanelLive {
		t.Fatalf("expected the panel live, got %s", p.Panel())
	}
	if !r.model.Pixel(5, 9) {
		t.Fatal("expected the composed pixel on the wire")
	}
	if r.model.Pixel(6, 9) {
		t.Fatal("expected neighbouring pixels dark")
	}
}

func TestPipelineDropsWhileFrameInFlight(t *testing.T) {
	r := newPanelRig(t)
	composed := 0
	p := NewPipeline(r.eng, r.ic, 5, DefaultAddr, func(fb *Framebuffer) { composed++ })

	p.Run()
	p.Run()
	if composed != 1 {
		t.Fatalf("expected no composition into a busy pipeline, got %d", composed)
	}
	if p.Drops() != 1 {
		t.Fatalf("expected the period dropped, got %d", p.Drops())
	}

	r.sb.Step()
	r.sb.Step()
	p.Run()
	r.sb.Step()
	r.sb.Step()
	if p.Frames() != 2 || p.Swaps() != 2 {
		t.Fatalf("expected 2 frames and 2 swaps, got %d/%d", p.Frames(), p.Swaps())
	}
}

func TestPipelineComposingBufferAlternates(t *testing.T) {
	r := newPanelRig(t)
	p := NewPipeline(r.eng, r.ic, 5, DefaultAddr, nil)

	first := p.Composing()
	p.Run()
	second := p.Composing()
	if first == second {
		t.Fatal("expected the swap to change the composing buffer")
	}

	// A dropped period leaves roles alone.
	p.Run()
	if p.Composing() != second {
		t.Fatal("expected a dropped period to leave the roles alone")
	}

	r.sb.Step()
	r.sb.Step()
	p.Run()
	if p.Composing() != first {
		t.Fatal("expected the roles to alternate")
	}
}

func TestPipelineResyncsAfterDeadTransfer(t *testing.T) {
	r := newPanelRig(t)
	p := NewPipeline(r.eng, r.ic, 5, DefaultAddr, func(fb *Framebuffer) {
		fb.Clear()
		fb.SetPixel(0, 0, white)
	})

	r.sb.InjectAddrNACK(3)
	p.Run()
	r.sb.Step()
	r.sb.Step()
	r.sb.Step()
	if p.Panel() != PanelFault {
		t.Fatalf("expected the panel faulted, got %s", p.Panel())
	}
	if p.Frames() != 0 {
		t.Fatalf("expected no presented frames, got %d", p.Frames())
	}

	// The next period re-arms the addressing window instead of
	// composing.
	p.Run()
	if p.Drops() != 1 {
		t.Fatalf("expected the resync period dropped, got %d", p.Drops())
	}
	r.sb.Step()
	r.sb.Step()

	p.Run()
	r.sb.Step()
	r.sb.Step()
	if p.Panel() != PanelLive {
		t.Fatalf("expected the panel recovered, got %s", p.Panel())
	}
	if p.Frames() != 1 {
		t.Fatalf("expected the recovery frame presented, got %d", p.Frames())
	}
	if !r.model.Pixel(0, 0) {
		t.Fatal("expected the recovery frame on the wire")
	}
}
