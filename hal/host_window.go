//go:build !tinygo && cgo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"quartz/internal/buildinfo"
)

const (
	panelW      = 128
	panelH      = 64
	windowScale = 4
)

// RunWindow opens a desktop window mirroring the panel model and
// forwarding the keyboard to the joystick. boot runs on its own
// goroutine and is expected to never return. Blocks until the window
// closes.
//
// Keys: arrows move, Enter or Space presses. N injects three address
// NACKs, D one payload NACK, E one DMA fault, W wedges the bus until
// the watchdog recovers it.
func RunWindow(h *Host, boot func(HAL)) error {
	go boot(h)

	g := &hostGame{
		h:   h,
		img: image.NewRGBA(image.Rect(0, 0, panelW, panelH)),
	}
	ebiten.SetWindowTitle(buildinfo.String())
	ebiten.SetWindowSize(panelW*windowScale, panelH*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *Host
	img   *image.RGBA
	fbImg *ebiten.Image
	ram   [1024]byte
}

func (g *hostGame) Update() error {
	var m ButtonMask
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		m |= ButtonUp
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		m |= ButtonDown
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		m |= ButtonLeft
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		m |= ButtonRight
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) || ebiten.IsKeyPressed(ebiten.KeySpace) {
		m |= ButtonPress
	}
	g.h.btns.SetAll(m)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.h.bus.InjectAddrNACK(3)
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.h.bus.InjectDataNACK(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.h.bus.InjectDMAError(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.h.bus.Wedge()
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(panelW, panelH)
	}

	on := g.h.Panel.On()
	g.h.Panel.Snapshot(&g.ram)

	dst := g.img.Pix
	for y := 0; y < panelH; y++ {
		for x := 0; x < panelW; x++ {
			lit := on && g.ram[(y>>3)*panelW+x]&(1<<uint(y&7)) != 0
			j := (y*panelW + x) * 4
			if lit {
				dst[j+0] = 0xE8
				dst[j+1] = 0xF4
				dst[j+2] = 0xFF
			} else {
				dst[j+0] = 0x10
				dst[j+1] = 0x12
				dst[j+2] = 0x1A
			}
			dst[j+3] = 0xFF
		}
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return panelW, panelH
}
