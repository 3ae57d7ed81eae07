package oled96

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/flavioheleno/oled96/font"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	// Width is the display width in pixels.
	Width = 128
	// Height is the display height in pixels.
	Height = 64
	// Pages is the number of 8 pixel tall pages.
	Pages = Height / 8

	// DefaultAddr is the usual I²C address of SSD1306 modules.
	DefaultAddr uint16 = 0x3C
)

// Transmission introducers.
const (
	cmdIntroducer  = 0x00
	dataIntroducer = 0x40
)

// SSD1306 opcodes.
const (
	cmdSetLowColumn       = 0x00
	cmdSetHighColumn      = 0x10
	cmdSetContrast        = 0x81
	cmdNormalDisplay      = 0xA6
	cmdInvertDisplay      = 0xA7
	cmdDisplayOff         = 0xAE
	cmdSetPage            = 0xB0
	cmdRightScroll        = 0x26
	cmdLeftScroll         = 0x27
	cmdDeactivateScroll   = 0x2E
	cmdActivateScroll     = 0x2F
	scrollDummy           = 0x00
	scrollTrailingPadding = 0xFF
)

// initSequence is sent verbatim, in order, as one command burst.
var initSequence = []byte{
	0xAE,       // Display OFF
	0xA8, 0x3F, // Multiplex ratio 63
	0xD3, 0x00, // Display offset 0
	0x40,       // Start line 0
	0xA0, 0xA1, // Segment remap
	0xC0, 0xC8, // COM scan direction
	0xDA, 0x12, // COM pins configuration
	0x81, 0xFF, // Contrast (max)
	0xA4,       // Display follows RAM
	0xA6,       // Normal (non-inverted) display
	0xD5, 0x80, // Clock divider and oscillator frequency
	0x8D, 0x14, // Charge pump enable
	0xAF,       // Display ON
	0x20, 0x02, // Page addressing mode
}

var (
	// ErrNotInitialized is returned by every operation on a device that has
	// not been initialized or has been halted.
	ErrNotInitialized = errors.New("oled96: not initialized")
	// ErrOutOfRange is returned for coordinates or lengths outside the
	// display memory.
	ErrOutOfRange = errors.New("oled96: out of range")
	// ErrChannelOpen is returned when the bus cannot be opened or the address
	// cannot be claimed.
	ErrChannelOpen = errors.New("oled96: failed to open channel")
)

// State is the lifecycle state of a Dev.
type State int

const (
	// Uninitialized is the state of a zero Dev.
	Uninitialized State = iota
	// Ready means the controller has been initialized and accepts commands.
	Ready
	// ShutDown means Halt has been called.
	ShutDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case ShutDown:
		return "ShutDown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Opts is the configuration for the display.
type Opts struct {
	// Addr is the 7-bit I²C address (default: 0x3C)
	Addr uint16
	// Speed is the bus clock; zero leaves the bus speed untouched
	Speed physic.Frequency

	// Font is rotated in place during initialization. It must not have been
	// rotated before. A nil Font renders every glyph blank.
	Font *font.Table
	// Charset maps text to glyph indices (default: code page 437)
	Charset encoding.Encoding

	// Logger receives diagnostics (default: no logging)
	Logger *zap.Logger
	// Registerer registers the driver metrics (default: not registered)
	Registerer prometheus.Registerer
}

// Dev is the device handle for the SSD1306 display.
//
// Dev is not safe for concurrent use.
type Dev struct {
	// Communication
	c      conn.Conn // I²C device bound to the controller address
	closer io.Closer // Bus opened by Open, closed by Halt

	// Display memory mirror
	buf    *image1bit.VerticalLSB
	offset int // Linear buf index of the controller write cursor

	// Text
	font    *font.Table
	charset encoding.Encoding

	log *zap.Logger
	m   *metrics
	err error // First transport error

	state State
}

var _ display.Drawer = (*Dev)(nil)

// Open opens the named I²C bus from the periph registry and initializes the
// display on it. An empty name opens the first bus available. The bus is
// closed by Halt.
func Open(name string, opts *Opts) (*Dev, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChannelOpen, err)
	}
	d, err := NewI2C(b, opts)
	if err != nil {
		return nil, errors.Join(err, b.Close())
	}
	d.closer = b
	return d, nil
}

// NewI2C binds the display address on b and initializes the controller.
//
// The initialization sequence is sent as one command burst and is not
// acknowledged by the controller. opts.Font is then rotated in place.
//
// opts can be nil to use defaults.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}

	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	if addr > 0x7F {
		return nil, fmt.Errorf("%w: address 0x%X is not a 7-bit address", ErrChannelOpen, addr)
	}
	if opts.Speed != 0 {
		if err := b.SetSpeed(opts.Speed); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrChannelOpen, err)
		}
	}

	tab := opts.Font
	if tab == nil {
		tab = &font.Table{}
	}
	if tab.Rotated() {
		return nil, fmt.Errorf("oled96: %w", font.ErrRotated)
	}

	charset := opts.Charset
	if charset == nil {
		charset = charmap.CodePage437
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dev{
		c:       &i2c.Dev{Bus: b, Addr: addr},
		buf:     image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
		font:    tab,
		charset: charset,
		log:     logger.With(zap.String("bus", b.String()), zap.Uint16("addr", addr)),
		m:       newMetrics(opts.Registerer),
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init sends the initialization sequence and prepares the font.
func (d *Dev) init() error {
	d.sendCommands(initSequence...)
	if err := d.font.Rotate(); err != nil {
		return fmt.Errorf("oled96: %w", err)
	}
	d.state = Ready
	d.log.Debug("display initialized")
	return nil
}

// sendCommands sends opcodes as one command-prefixed transmission.
func (d *Dev) sendCommands(cmds ...byte) {
	w := make([]byte, 0, len(cmds)+1)
	w = append(w, cmdIntroducer)
	d.tx("command", append(w, cmds...))
}

// sendData sends pixel bytes as one data-prefixed transmission.
func (d *Dev) sendData(data []byte) {
	w := make([]byte, 0, len(data)+1)
	w = append(w, dataIntroducer)
	d.tx("data", append(w, data...))
}

// tx transmits w. Transport failures do not fail the caller and the cache is
// kept as if the write went through; the first one is reported by Err.
func (d *Dev) tx(kind string, w []byte) {
	d.m.writes.WithLabelValues(kind).Inc()
	d.m.bytes.Add(float64(len(w)))
	if err := d.c.Tx(w, nil); err != nil {
		d.m.errors.Inc()
		d.log.Warn("bus write failed", zap.String("kind", kind), zap.Int("len", len(w)), zap.Error(err))
		if d.err == nil {
			d.err = fmt.Errorf("oled96: bus write failed: %w", err)
		}
	}
}

// ready returns ErrNotInitialized unless the device is Ready.
func (d *Dev) ready() error {
	if d.state != Ready {
		return ErrNotInitialized
	}
	return nil
}

// Err returns the first bus write error seen since initialization, if any.
//
// Writes are fire-and-forget: a failed transmission does not fail the
// operation that issued it and the local memory copy is updated regardless,
// so after an error it may no longer match the controller.
func (d *Dev) Err() error {
	return d.err
}

// State returns the lifecycle state of the device.
func (d *Dev) State() State {
	return d.state
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("oled96.Dev{%dx%d}", Width, Height)
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.sendCommands(cmdSetContrast, contrast)
	return nil
}

// Invert inverts the display colors (lit becomes dark and vice versa).
// The memory copy is unaffected.
func (d *Dev) Invert(invert bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	mode := byte(cmdNormalDisplay)
	if invert {
		mode = cmdInvertDisplay
	}
	d.sendCommands(mode)
	return nil
}

// SetPosition moves the controller write cursor to column col (0-127) of
// page (0-7).
func (d *Dev) SetPosition(col, page int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if col < 0 || col >= Width || page < 0 || page >= Pages {
		return fmt.Errorf("%w: position (%d, %d)", ErrOutOfRange, col, page)
	}
	d.setPosition(col, page)
	return nil
}

// setPosition sends page, low column and high column as three commands.
func (d *Dev) setPosition(col, page int) {
	d.sendCommands(cmdSetPage | byte(page))
	d.sendCommands(cmdSetLowColumn | byte(col&0x0F))
	d.sendCommands(cmdSetHighColumn | byte((col>>4)&0x0F))
	d.offset = page*Width + col
}

// Halt turns the display off and, if the bus was opened by Open, closes it.
// Calling Halt on a device that is not Ready does nothing.
func (d *Dev) Halt() error {
	if d.state != Ready {
		return nil
	}
	d.sendCommands(cmdDisplayOff)
	d.state = ShutDown
	d.log.Debug("display halted")
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			return fmt.Errorf("oled96: failed to close bus: %w", err)
		}
	}
	return nil
}

// ScrollSpeed defines the horizontal scroll step interval.
type ScrollSpeed byte

const (
	// Step intervals (in frames)
	Speed2Frames   ScrollSpeed = 0x07
	Speed3Frames   ScrollSpeed = 0x04
	Speed4Frames   ScrollSpeed = 0x05
	Speed5Frames   ScrollSpeed = 0x00
	Speed25Frames  ScrollSpeed = 0x06
	Speed64Frames  ScrollSpeed = 0x01
	Speed128Frames ScrollSpeed = 0x02
	Speed256Frames ScrollSpeed = 0x03
)

// ScrollHorizontal starts horizontal scrolling of pages startPage to endPage.
// If right is true, scrolls right; otherwise scrolls left.
//
// Any running scroll is deactivated first, which corrupts the controller RAM,
// so the whole display is rewritten from the memory copy before the new
// scroll is set up.
func (d *Dev) ScrollHorizontal(startPage, endPage int, speed ScrollSpeed, right bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	if startPage < 0 || endPage >= Pages || startPage > endPage {
		return fmt.Errorf("%w: scroll pages %d-%d", ErrOutOfRange, startPage, endPage)
	}
	if speed > Speed2Frames {
		return fmt.Errorf("%w: scroll speed 0x%02X", ErrOutOfRange, byte(speed))
	}

	scrollCmd := byte(cmdLeftScroll)
	if right {
		scrollCmd = cmdRightScroll
	}

	d.sendCommands(cmdDeactivateScroll)
	d.restore()
	d.sendCommands(
		scrollCmd,
		scrollDummy,
		byte(startPage),
		byte(speed),
		byte(endPage),
		scrollDummy,
		scrollTrailingPadding,
		cmdActivateScroll,
	)
	return nil
}

// StopScroll stops scrolling and rewrites the display from the memory copy.
func (d *Dev) StopScroll() error {
	if err := d.ready(); err != nil {
		return err
	}
	d.sendCommands(cmdDeactivateScroll)
	d.restore()
	return nil
}

// restore rewrites every page of display memory from the memory copy. RAM
// contents are not preserved once scrolling is deactivated.
func (d *Dev) restore() {
	for page := 0; page < Pages; page++ {
		d.setPosition(0, page)
		d.sendData(d.buf.Pix[page*Width : (page+1)*Width])
		d.offset += Width
	}
}
