package oled96

import (
	"fmt"

	"github.com/flavioheleno/oled96/font"
	"golang.org/x/text/encoding"
)

// FontSize selects one of the two glyph tables.
type FontSize int

const (
	// Small is the 8×8 font: 16 cells per row, one page tall.
	Small FontSize = iota
	// Large is the 16×24 font: 8 cells per row, three pages tall.
	Large
)

const (
	smallCellWidth = 8
	smallCells     = Width / smallCellWidth

	largeCellWidth = 16
	largeCells     = Width / largeCellWidth
	// Only the first three bands of a large glyph are drawn.
	largeBandsDrawn = 3
)

func (s FontSize) String() string {
	switch s {
	case Small:
		return "Small"
	case Large:
		return "Large"
	}
	return fmt.Sprintf("FontSize(%d)", int(s))
}

// WriteString draws text at glyph cell x of page y.
//
// x counts cells, not pixels: 8 pixels wide for Small, 16 for Large. Text is
// mapped to glyphs with the configured charset and silently truncated at the
// right edge of the display. A start cell past the right edge is an error.
//
// Large glyphs occupy pages y, y+1 and y+2. Large glyphs beyond the 128 glyph
// table render as a space.
func (d *Dev) WriteString(x, y int, text string, size FontSize) error {
	if err := d.ready(); err != nil {
		return err
	}
	s, err := encoding.ReplaceUnsupported(d.charset.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return fmt.Errorf("oled96: failed to encode text: %w", err)
	}

	switch size {
	case Small:
		return d.writeSmall(x, y, s)
	case Large:
		return d.writeLarge(x, y, s)
	}
	return fmt.Errorf("oled96: unknown font size %v", size)
}

// writeSmall positions the cursor once; consecutive glyphs follow through
// the cursor auto-increment.
func (d *Dev) writeSmall(x, y int, s []byte) error {
	n := min(len(s), smallCells-x)
	if n < 0 || x < 0 || y < 0 || y >= Pages {
		return fmt.Errorf("%w: small text at cell (%d, %d)", ErrOutOfRange, x, y)
	}
	if n == 0 {
		return nil
	}

	d.setPosition(x*smallCellWidth, y)
	for _, c := range s[:n] {
		if err := d.writeDataBlock(d.font.SmallGlyph(c)); err != nil {
			return err
		}
	}
	return nil
}

// writeLarge addresses every band of every glyph explicitly, since the bands
// of one glyph sit on different pages.
func (d *Dev) writeLarge(x, y int, s []byte) error {
	n := min(len(s), largeCells-x)
	if n < 0 || x < 0 || y < 0 || y+largeBandsDrawn > Pages {
		return fmt.Errorf("%w: large text at cell (%d, %d)", ErrOutOfRange, x, y)
	}

	for i, c := range s[:n] {
		g := d.font.LargeGlyph(c)
		if g == nil {
			g = d.font.LargeGlyph(' ')
		}
		col := (x + i) * largeCellWidth
		for band := 0; band < largeBandsDrawn; band++ {
			d.setPosition(col, y+band)
			if err := d.writeDataBlock(g[band*font.LargeBandSize : (band+1)*font.LargeBandSize]); err != nil {
				return err
			}
		}
	}
	return nil
}
