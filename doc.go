// Package oled96 controls a 128×64 monochrome SSD1306 OLED display via I²C.
//
// The driver keeps a copy of the 1024 byte display memory, so single pixels
// can be changed without reading back from the controller, and it renders
// text from an 8×8 and a 16×24 glyph table. Dev implements the
// display.Drawer interface from periph.io.
//
// # Display Memory
//
// The SSD1306 memory is split into 8 pages of 128 columns. Each byte is a
// vertical strip of 8 pixels, least significant bit on top, so pixel (x, y)
// lives in bit y%8 of byte (y/8)*128 + x. The image1bit package provides an
// image.Image with the same layout.
//
// The controller is configured for page addressing: after a data byte the
// column advances and wraps within the page. Every data block this driver
// sends therefore stays inside one page.
//
// # Hardware Connection
//
// Connect the display to an I²C bus:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL         → I²C Clock (SCL)
//	SDA         → I²C Data (SDA)
//
// Most modules answer at 0x3C; some are strapped to 0x3D.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"os"
//
//		"github.com/flavioheleno/oled96"
//		"github.com/flavioheleno/oled96/font"
//		"periph.io/x/devices/v3/ssd1306/image1bit"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		f, _ := os.Open("oled96.fnt")
//		tab, _ := font.Load(f)
//
//		// Open the first I²C bus and initialize the display
//		dev, _ := oled96.Open("", &oled96.Opts{Font: tab})
//		defer dev.Halt()
//
//		dev.Fill(0x00)
//		dev.WriteString(0, 0, "Hello", oled96.Large)
//		dev.SetPixel(127, 63, image1bit.On)
//	}
//
// To share a bus opened elsewhere, use NewI2C instead of Open. Halt then
// leaves the bus open.
//
// # Pixels and Images
//
// SetPixel only talks to the controller when the pixel actually changes.
// Draw accepts any image.Image, converts each pixel with image1bit.BitModel
// and sends only the runs of bytes that differ from the memory copy.
//
// # Text
//
// WriteString positions text by glyph cell, not pixel: a Small cell is 8
// pixels wide and one page tall, a Large cell is 16 pixels wide and three
// pages tall. Text is mapped to glyph indices with code page 437 unless
// Opts.Charset says otherwise, and is silently cut at the right edge.
//
// Glyph tables are stored row-major. The font is rotated into the controller
// layout in place when the display is initialized, so a font.Table must not
// be shared between two displays. 8×8 console fonts in PSF format can be
// loaded with font.ReadPSF.
//
// # Hardware Scrolling
//
//	// Scroll pages 0-3 right, one step every 5 frames
//	dev.ScrollHorizontal(0, 3, oled96.Speed5Frames, true)
//	time.Sleep(5 * time.Second)
//	dev.StopScroll()
//
// Deactivating a scroll leaves the controller RAM undefined. Both
// ScrollHorizontal and StopScroll deactivate any running scroll and then
// rewrite all 8 pages from the memory copy, so the copy keeps matching the
// display.
//
// # Errors
//
// Bus writes are fire-and-forget. A failed transmission does not fail the
// operation that issued it; the first failure is kept and returned by Err,
// logged at warn level and counted in oled96_bus_errors_total.
//
// # Logging and Metrics
//
// Opts.Logger takes a *zap.Logger; by default nothing is logged.
// Opts.Registerer registers the oled96_* counters with a Prometheus registry;
// by default they are kept but not registered.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package oled96
