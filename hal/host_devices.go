//go:build !tinygo

package hal

import (
	"sync"
	"time"

	"quartz/devices/ds3231"
)

// SSD1306Model is a register-level model of the 128x64 OLED
// controller: a command parser, the addressing window and 1 KiB of
// GDDRAM. The window renderer and the display tests read pixels out
// of it, so what they see is what actually crossed the wire.
type SSD1306Model struct {
	mu sync.Mutex

	ram       [1024]byte
	col       int
	page      int
	colStart  int
	colEnd    int
	pageStart int
	pageEnd   int

	mode     byte
	on       bool
	contrast byte

	cmd      byte
	argsWant int
	args     [2]byte
	argsGot  int

	frames int
}

func NewSSD1306Model() *SSD1306Model {
	return &SSD1306Model{colEnd: 127, pageEnd: 7, contrast: 0x7F}
}

func (m *SSD1306Model) Receive(p []byte) {
	if len(p) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch p[0] {
	case 0x00:
		for _, b := range p[1:] {
			m.command(b)
		}
	case 0x40:
		m.data(p[1:])
	}
}

// Transmit: the panel has nothing to say over I2C.
func (m *SSD1306Model) Transmit(p []byte) {
	for i := range p {
		p[i] = 0
	}
}

// argc is the operand count of a command byte.
func argc(cmd byte) int {
	switch cmd {
	case 0x21, 0x22:
		return 2
	case 0x20, 0x81, 0x8D, 0xA8, 0xD3, 0xD5, 0xD9, 0xDA, 0xDB:
		return 1
	}
	return 0
}

func (m *SSD1306Model) command(b byte) {
	if m.argsWant > 0 {
		m.args[m.argsGot] = b
		m.argsGot++
		m.argsWant--
		if m.argsWant > 0 {
			return
		}
		m.exec()
		return
	}
	m.cmd = b
	m.argsGot = 0
	if n := argc(b); n > 0 {
		m.argsWant = n
		return
	}
	m.exec()
}

func (m *SSD1306Model) exec() {
	switch m.cmd {
	case 0x20:
		m.mode = m.args[0]
	case 0x21:
		m.colStart = int(m.args[0]) & 0x7F
		m.colEnd = int(m.args[1]) & 0x7F
		m.col = m.colStart
	case 0x22:
		m.pageStart = int(m.args[0]) & 0x07
		m.pageEnd = int(m.args[1]) & 0x07
		m.page = m.pageStart
	case 0x81:
		m.contrast = m.args[0]
	case 0xAE:
		m.on = false
	case 0xAF:
		m.on = true
	}
}

// data streams payload bytes into GDDRAM with horizontal-mode wrap.
func (m *SSD1306Model) data(p []byte) {
	if len(p) > 0 {
		m.frames++
	}
	for _, b := range p {
		m.ram[m.page*128+m.col] = b
		m.col++
		if m.col > m.colEnd {
			m.col = m.colStart
			m.page++
			if m.page > m.pageEnd {
				m.page = m.pageStart
			}
		}
	}
}

// Snapshot copies GDDRAM under one lock.
func (m *SSD1306Model) Snapshot(dst *[1024]byte) {
	m.mu.Lock()
	*dst = m.ram
	m.mu.Unlock()
}

// Pixel reports one pixel of GDDRAM.
func (m *SSD1306Model) Pixel(x, y int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if x < 0 || x > 127 || y < 0 || y > 63 {
		return false
	}
	return m.ram[(y>>3)*128+x]&(1<<uint(y&7)) != 0
}

// On reports the display-on state.
func (m *SSD1306Model) On() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}

// Frames reports data payloads received.
func (m *SSD1306Model) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// DS3231Model is the RTC register file: pointer write, auto-increment
// reads, nineteen registers. A fresh model is frozen; FollowWall keeps
// the calendar counting with the host clock and AdvanceMillis moves it
// under virtual time, so a resync five minutes in reads a clock that
// kept running.
type DS3231Model struct {
	mu     sync.Mutex
	regs   [19]byte
	ptr    int
	writes int

	wall  bool
	last  time.Time
	remMS int
}

func NewDS3231Model() *DS3231Model {
	return &DS3231Model{}
}

// FollowWall starts the calendar registers counting with the host
// clock, caught up lazily on each bus access.
func (m *DS3231Model) FollowWall() {
	m.mu.Lock()
	m.wall = true
	m.last = time.Now()
	m.mu.Unlock()
}

// AdvanceMillis moves the calendar under virtual time.
func (m *DS3231Model) AdvanceMillis(ms int) {
	m.mu.Lock()
	m.remMS += ms
	if m.remMS >= 1000 {
		secs := m.remMS / 1000
		m.remMS %= 1000
		m.stepLocked(secs)
	}
	m.mu.Unlock()
}

func (m *DS3231Model) catchUpLocked() {
	if !m.wall {
		return
	}
	secs := int(time.Since(m.last) / time.Second)
	if secs <= 0 {
		return
	}
	m.last = m.last.Add(time.Duration(secs) * time.Second)
	m.stepLocked(secs)
}

func (m *DS3231Model) stepLocked(secs int) {
	t := ds3231.Decode(m.regs[:ds3231.TimeLen])
	for i := 0; i < secs; i++ {
		t.AddSecond()
	}
	ds3231.Encode(t, m.regs[:ds3231.TimeLen])
}

func (m *DS3231Model) Receive(p []byte) {
	if len(p) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catchUpLocked()
	m.ptr = int(p[0]) % len(m.regs)
	if len(p) > 1 {
		m.writes++
	}
	for _, b := range p[1:] {
		m.regs[m.ptr] = b
		m.ptr = (m.ptr + 1) % len(m.regs)
	}
}

func (m *DS3231Model) Transmit(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catchUpLocked()
	for i := range p {
		p[i] = m.regs[m.ptr]
		m.ptr = (m.ptr + 1) % len(m.regs)
	}
}

// Poke writes one register directly, bypassing the bus.
func (m *DS3231Model) Poke(reg int, v byte) {
	m.mu.Lock()
	m.regs[reg%len(m.regs)] = v
	m.mu.Unlock()
}

// Peek reads one register directly.
func (m *DS3231Model) Peek(reg int) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg%len(m.regs)]
}

// Writes reports bus writes that carried register data.
func (m *DS3231Model) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// LM75BModel is the temperature sensor: an 11-bit reading in the
// upper bits of a two-byte register.
type LM75BModel struct {
	mu    sync.Mutex
	raw   uint16
	reads int
}

func NewLM75BModel() *LM75BModel {
	return &LM75BModel{}
}

// SetMilli loads a temperature in milli-degrees C, clamped to the
// sensor's 0.125 degree grid.
func (m *LM75BModel) SetMilli(mc int32) {
	m.mu.Lock()
	m.raw = uint16(int16(mc/125) << 5)
	m.mu.Unlock()
}

func (m *LM75BModel) Receive(p []byte) {}

func (m *LM75BModel) Transmit(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if len(p) >= 1 {
		p[0] = uint8(m.raw >> 8)
	}
	if len(p) >= 2 {
		p[1] = uint8(m.raw)
	}
}

// Reads reports bus reads of the temperature register.
func (m *LM75BModel) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
