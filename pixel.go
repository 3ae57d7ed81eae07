package oled96

import (
	"bytes"
	"fmt"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// SetPixel lights (On) or clears (Off) the pixel at (x, y).
//
// The memory copy decides whether anything is sent: when the pixel already
// has the requested value there is no bus traffic at all. Otherwise the byte
// holding the pixel is addressed and rewritten.
func (d *Dev) SetPixel(x, y int, c image1bit.Bit) error {
	if err := d.ready(); err != nil {
		return err
	}
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfRange, x, y)
	}

	i, _ := d.buf.PixOffset(x, y)
	old := d.buf.Pix[i]
	v := applyBit(old, bitMask(y), c)
	if v == old {
		d.m.skipped.Inc()
		return nil
	}

	d.setPosition(x, y>>3)
	return d.writeDataBlock([]byte{v})
}

// Pixel returns the value of the pixel at (x, y) from the memory copy.
func (d *Dev) Pixel(x, y int) (image1bit.Bit, error) {
	if err := d.ready(); err != nil {
		return image1bit.Off, err
	}
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return image1bit.Off, fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfRange, x, y)
	}
	return d.buf.BitAt(x, y), nil
}

// Fill sets every byte of display memory to v: 0x00 clears the display,
// 0xFF lights every pixel.
func (d *Dev) Fill(v byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	row := bytes.Repeat([]byte{v}, Width)
	for page := 0; page < Pages; page++ {
		d.setPosition(0, page)
		if err := d.writeDataBlock(row); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of the display memory as last written.
func (d *Dev) Snapshot() *image1bit.VerticalLSB {
	s := image1bit.NewVerticalLSB(d.Bounds())
	if d.buf != nil {
		copy(s.Pix, d.buf.Pix)
	}
	return s
}

// bitMask returns the mask of row y within its page byte. Bit 0 is the top
// row of a page.
func bitMask(y int) byte {
	return 1 << uint(y&7)
}

// applyBit sets or clears the bits of mask in v.
func applyBit(v, mask byte, c image1bit.Bit) byte {
	if c {
		return v | mask
	}
	return v &^ mask
}

// writeDataBlock sends b at the write cursor and mirrors it into the memory
// copy, then advances the cursor by len(b).
//
// The controller runs in page addressing mode, where the column wraps within
// the page, so a block must fit between the cursor and the end of its page.
func (d *Dev) writeDataBlock(b []byte) error {
	col := d.offset % Width
	if len(b) == 0 || col+len(b) > Width || d.offset+len(b) > len(d.buf.Pix) {
		return fmt.Errorf("%w: %d byte block at offset %d", ErrOutOfRange, len(b), d.offset)
	}
	d.sendData(b)
	copy(d.buf.Pix[d.offset:], b)
	d.offset += len(b)
	return nil
}

// Draw draws src onto the display. The dst rectangle is clipped to the
// display bounds and src point sp is aligned with dst.Min.
//
// Pixels are merged into the memory copy byte by byte; only runs of bytes
// that actually change are sent, one data block per run.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.ready(); err != nil {
		return err
	}

	r := dst.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	delta := sp.Sub(dst.Min)

	next := make([]byte, r.Dx())
	for page := r.Min.Y >> 3; page <= (r.Max.Y-1)>>3; page++ {
		// Rows of this page covered by r
		top := max(r.Min.Y, page*8)
		bottom := min(r.Max.Y, page*8+8)

		for x := r.Min.X; x < r.Max.X; x++ {
			off, _ := d.buf.PixOffset(x, top)
			v := d.buf.Pix[off]
			for y := top; y < bottom; y++ {
				c := image1bit.BitModel.Convert(src.At(x+delta.X, y+delta.Y)).(image1bit.Bit)
				v = applyBit(v, bitMask(y), c)
			}
			next[x-r.Min.X] = v
		}

		if err := d.flushRuns(page, r.Min.X, next); err != nil {
			return err
		}
	}
	return nil
}

// flushRuns writes the bytes of next that differ from the memory copy, where
// next holds page bytes starting at column x0.
func (d *Dev) flushRuns(page, x0 int, next []byte) error {
	base := page*Width + x0
	for i := 0; i < len(next); {
		if next[i] == d.buf.Pix[base+i] {
			i++
			continue
		}
		j := i + 1
		for j < len(next) && next[j] != d.buf.Pix[base+j] {
			j++
		}
		d.setPosition(x0+i, page)
		if err := d.writeDataBlock(next[i:j]); err != nil {
			return err
		}
		i = j
	}
	return nil
}
