// Package font holds the glyph tables used by the oled96 text renderer and
// prepares them for the SSD1306 page memory.
//
// Glyph bitmaps are supplied row-major: each byte is one pixel row, most
// significant bit on the left. The controller wants the opposite: each byte is
// one pixel column, least significant bit on top. Table.Rotate performs that
// 90° bit transposition once, in place, so that text rendering can copy glyph
// bytes straight to the display.
package font

import (
	"errors"
	"fmt"
	"io"
)

const (
	// SmallGlyphs is the number of glyphs in the 8×8 font.
	SmallGlyphs = 256
	// SmallGlyphSize is the size of one 8×8 glyph in bytes.
	SmallGlyphSize = 8

	// LargeGlyphs is the number of glyphs in the large font.
	LargeGlyphs = 128
	// LargeGlyphSize is the size of one large glyph in bytes.
	LargeGlyphSize = 64
	// LargeBands is the number of 16 byte bands in a large glyph.
	LargeBands = 4
	// LargeBandSize is the size of one band of a large glyph in bytes.
	LargeBandSize = 16

	// AssetLargeOffset is where the large font begins in a combined asset.
	AssetLargeOffset = 9728
	// AssetSize is the minimum size of a combined asset.
	AssetSize = AssetLargeOffset + LargeGlyphs*LargeGlyphSize

	// The large font sample window starts 12 bytes into each band.
	windowOffset = 12
)

var (
	// ErrRotated is returned when a table is rotated a second time.
	ErrRotated = errors.New("font: table already rotated")
	// ErrShortAsset is returned when a combined asset is too small.
	ErrShortAsset = errors.New("font: asset too short")
)

// Table is a pair of glyph tables: a 256 glyph 8×8 font and a 128 glyph large
// font. A large glyph is 64 bytes laid out as 4 bands of 16 bytes.
//
// A Table starts row-major and becomes column-major after Rotate. Rotation is
// not an involution, so the table remembers whether it has been rotated.
type Table struct {
	Small [SmallGlyphs * SmallGlyphSize]byte
	Large [LargeGlyphs * LargeGlyphSize]byte

	// tail holds the asset bytes that follow the large font. The sample window
	// of the last glyph's last band reaches into them.
	tail    [windowOffset]byte
	rotated bool
}

// Parse builds a Table from a combined asset: the small font at offset 0 and
// the large font at AssetLargeOffset. Bytes past the large font are kept for
// the rotation window; the rest of the asset is ignored.
func Parse(b []byte) (*Table, error) {
	if len(b) < AssetSize {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrShortAsset, len(b), AssetSize)
	}
	t := &Table{}
	copy(t.Small[:], b)
	copy(t.Large[:], b[AssetLargeOffset:])
	copy(t.tail[:], b[AssetSize:])
	return t, nil
}

// Load reads a combined asset from r and parses it.
func Load(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("font: failed to read asset: %w", err)
	}
	return Parse(b)
}

// Rotated reports whether Rotate has been run on the table.
func (t *Table) Rotated() bool {
	return t.rotated
}

// SmallGlyph returns the 8 bytes of glyph c in the small font.
func (t *Table) SmallGlyph(c byte) []byte {
	i := int(c) * SmallGlyphSize
	return t.Small[i : i+SmallGlyphSize]
}

// LargeGlyph returns the 64 bytes of glyph c in the large font, or nil when
// c is outside the 128 glyph range.
func (t *Table) LargeGlyph(c byte) []byte {
	if int(c) >= LargeGlyphs {
		return nil
	}
	i := int(c) * LargeGlyphSize
	return t.Large[i : i+LargeGlyphSize]
}

// Rotate converts both fonts from row-major to the column-major, LSB-on-top
// layout of the page memory. It must run exactly once per table.
func (t *Table) Rotate() error {
	if t.rotated {
		return ErrRotated
	}
	for i := 0; i < SmallGlyphs; i++ {
		g := (*[SmallGlyphSize]byte)(t.Small[i*SmallGlyphSize:])
		RotateGlyph8(g)
	}
	// Glyphs are rotated in ascending order. The window of the last band of
	// glyph i overlaps the first bytes of glyph i+1, which are still unrotated
	// at that point.
	for i := 0; i < LargeGlyphs; i++ {
		t.rotateLarge(i)
	}
	t.rotated = true
	return nil
}

// RotateGlyph8 rotates one 8×8 glyph 90° clockwise in place. Input byte r
// holds the pixels of row r, MSB leftmost. Output byte c holds the pixels of
// column c, bit 0 on top.
func RotateGlyph8(g *[SmallGlyphSize]byte) {
	var out [SmallGlyphSize]byte
	mask := byte(1)
	for y := 0; y < 8; y++ {
		var c byte
		for x := 0; x < 8; x++ {
			c >>= 1
			if g[x]&mask != 0 {
				c |= 0x80
			}
		}
		mask <<= 1
		out[7-y] = c
	}
	*g = out
}

// rotateLarge rotates large glyph i. Each band samples 8 byte pairs from a
// window starting windowOffset bytes into the band; even and odd bytes of a
// pair feed two separate output columns.
func (t *Table) rotateLarge(i int) {
	var out [LargeGlyphSize]byte
	for j := 0; j < LargeBands; j++ {
		src := i*LargeGlyphSize + j*LargeBandSize + windowOffset
		d := out[j*LargeBandSize : (j+1)*LargeBandSize]
		mask := byte(1)
		for y := 0; y < 8; y++ {
			var c, c2 byte
			for x := 0; x < 8; x++ {
				c >>= 1
				c2 >>= 1
				if t.largeAt(src+x*2)&mask != 0 {
					c |= 0x80
				}
				if t.largeAt(src+x*2+1)&mask != 0 {
					c2 |= 0x80
				}
			}
			mask <<= 1
			d[7-y] = c
			d[15-y] = c2
		}
	}
	copy(t.Large[i*LargeGlyphSize:], out[:])
}

// largeAt reads the large font at i, continuing into tail past its end.
// Anything beyond tail reads as zero.
func (t *Table) largeAt(i int) byte {
	if i < len(t.Large) {
		return t.Large[i]
	}
	i -= len(t.Large)
	if i < len(t.tail) {
		return t.tail[i]
	}
	return 0
}
