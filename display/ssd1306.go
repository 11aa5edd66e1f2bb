package display

import "tinygo.org/x/drivers"

// DefaultAddr is the SSD1306's usual 7-bit bus address.
const DefaultAddr = 0x3C

// I2C control prefixes: every write starts with one, marking the rest
// of the payload as command or GDDRAM data.
const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// windowReset re-arms the full-panel addressing window. In horizontal
// addressing mode the write pointer wraps by itself after a complete
// frame, so this is only needed at bring-up and after a transfer died
// mid-frame.
var windowReset = [...]byte{ctrlCommand,
	0x21, 0x00, Width - 1, // COLUMNADDR 0..127
	0x22, 0x00, pages - 1, // PAGEADDR 0..7
}

// Controller drives the SSD1306 command plane. It runs over the
// blocking bus adapter at bring-up, before the scheduler starts; after
// that the update pipeline owns the panel.
type Controller struct {
	bus  drivers.I2C
	addr uint8
	buf  [4]byte
	err  error
}

// NewController creates a command-plane handle.
func NewController(bus drivers.I2C, addr uint8) *Controller {
	return &Controller{bus: bus, addr: addr}
}

// Configure brings the panel up for a 128x64 module.
func (c *Controller) Configure() error {
	c.err = nil

	// Panel off, addressing, scan direction.
	c.cmd(0xAE)       // DISPLAYOFF
	c.cmd(0x20, 0x00) // MEMORYMODE horizontal
	c.cmd(0xC8)       // COMSCANDEC
	c.cmd(0x00)       // low column 0
	c.cmd(0x10)       // high column 0
	c.cmd(0x40)       // STARTLINE 0
	c.cmd(0xB0)       // page 0

	// Drive strength and orientation.
	c.cmd(0x81, 0xCF) // CONTRAST
	c.cmd(0xA1)       // SEGREMAP mirrored
	c.cmd(0xA6)       // NORMALDISPLAY
	c.cmd(0xA8, 0x3F) // MULTIPLEX 1/64
	c.cmd(0xA4)       // DISPLAYALLON resume from RAM

	// Timing and charge pump.
	c.cmd(0xD3, 0x00) // DISPLAYOFFSET 0
	c.cmd(0xD5, 0x80) // CLOCKDIV default
	c.cmd(0xD9, 0x22) // PRECHARGE
	c.cmd(0xDA, 0x12) // COMPINS alternative
	c.cmd(0xDB, 0x20) // VCOMDETECT 0.77*Vcc
	c.cmd(0x8D, 0x14) // CHARGEPUMP on

	c.cmd(0xAF) // DISPLAYON

	if c.err != nil {
		return c.err
	}
	return c.Window()
}

// Window resets the addressing window to the full panel.
func (c *Controller) Window() error {
	if c.err == nil {
		w := windowReset
		c.err = c.bus.Tx(uint16(c.addr), w[:], nil)
	}
	return c.err
}

// SetContrast adjusts panel drive, 0 dimmest to 255 brightest.
func (c *Controller) SetContrast(v uint8) error {
	c.err = nil
	c.cmd(0x81, v) // CONTRAST
	return c.err
}

// cmd latches the first transport error; later calls become no-ops so
// a sequence reads straight-line.
func (c *Controller) cmd(cmd byte, args ...byte) {
	if c.err != nil {
		return
	}
	c.buf[0] = ctrlCommand
	c.buf[1] = cmd
	n := 2 + copy(c.buf[2:], args)
	c.err = c.bus.Tx(uint16(c.addr), c.buf[:n], nil)
}
