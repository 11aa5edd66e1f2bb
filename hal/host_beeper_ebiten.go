//go:build !tinygo && cgo

package hal

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const beepSampleRate = 44100

// hostBeeper plays the alarm tone through Ebiten's audio package: an
// endless square-wave reader behind a player, created on Start and
// closed on Stop.
type hostBeeper struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player
}

func newHostBeeper() Beeper { return &hostBeeper{} }

func (b *hostBeeper) Start(freqHz uint32) {
	if freqHz == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		b.ctx = audio.NewContext(beepSampleRate)
	}
	if b.player != nil {
		_ = b.player.Close()
		b.player = nil
	}
	p, err := b.ctx.NewPlayer(&squareWave{period: beepSampleRate / int(freqHz)})
	if err != nil {
		return
	}
	p.SetBufferSize(50 * time.Millisecond)
	p.Play()
	b.player = p
}

func (b *hostBeeper) Stop() {
	b.mu.Lock()
	p := b.player
	b.player = nil
	b.mu.Unlock()
	if p != nil {
		_ = p.Close()
	}
}

// squareWave is an endless 16-bit little-endian stereo square tone.
type squareWave struct {
	period int
	phase  int
}

func (w *squareWave) Read(p []byte) (int, error) {
	if w.period < 2 {
		w.period = 2
	}
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		s := int16(6000)
		if w.phase < w.period/2 {
			s = -6000
		}
		p[i] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
		w.phase++
		if w.phase >= w.period {
			w.phase = 0
		}
	}
	return n, nil
}
