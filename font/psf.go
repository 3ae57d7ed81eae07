package font

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotPSF is returned when the input is not a PC Screen Font.
	ErrNotPSF = errors.New("font: not a psf font")
	// ErrGlyphSize is returned when a PSF font does not have 8×8 glyphs.
	ErrGlyphSize = errors.New("font: psf glyphs must be 8x8")
)

var (
	psf1Magic = []byte{0x36, 0x04}
	psf2Magic = []byte{0x72, 0xb5, 0x4a, 0x86}
)

// psfHeader is the PSF2 header. PSF1 fonts are mapped onto it.
type psfHeader struct {
	Version       uint32
	HeaderSize    uint32
	Flags         uint32
	NumGlyphs     uint32
	BytesPerGlyph uint32
	Height        uint32
	Width         uint32
}

// ReadPSF reads an 8×8 PC Screen Font (version 1 or 2) into the small font of
// a new Table. PSF rows are stored MSB first, which is the layout Rotate
// expects. Glyphs past the 256th are ignored and the large font is blank.
func ReadPSF(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("font: failed to read psf: %w", err)
	}

	h, err := parsePSFHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Width != 8 || h.Height != 8 || h.BytesPerGlyph != SmallGlyphSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGlyphSize, h.Width, h.Height)
	}

	n := int(h.NumGlyphs)
	if n > SmallGlyphs {
		n = SmallGlyphs
	}
	start := int(h.HeaderSize)
	end := start + n*SmallGlyphSize
	if start > len(b) || end > len(b) {
		return nil, fmt.Errorf("%w: glyph data truncated", ErrNotPSF)
	}

	t := &Table{}
	copy(t.Small[:], b[start:end])
	return t, nil
}

func parsePSFHeader(b []byte) (psfHeader, error) {
	switch {
	case len(b) >= 32 && bytes.Equal(b[:4], psf2Magic):
		return psfHeader{
			Version:       binary.LittleEndian.Uint32(b[4:8]),
			HeaderSize:    binary.LittleEndian.Uint32(b[8:12]),
			Flags:         binary.LittleEndian.Uint32(b[12:16]),
			NumGlyphs:     binary.LittleEndian.Uint32(b[16:20]),
			BytesPerGlyph: binary.LittleEndian.Uint32(b[20:24]),
			Height:        binary.LittleEndian.Uint32(b[24:28]),
			Width:         binary.LittleEndian.Uint32(b[28:32]),
		}, nil
	case len(b) >= 4 && bytes.Equal(b[:2], psf1Magic):
		// PSF1: mode byte, then charsize (glyph height, width is always 8)
		n := uint32(256)
		if b[2]&0x01 != 0 {
			n = 512
		}
		return psfHeader{
			HeaderSize:    4,
			NumGlyphs:     n,
			BytesPerGlyph: uint32(b[3]),
			Height:        uint32(b[3]),
			Width:         8,
		}, nil
	}
	return psfHeader{}, ErrNotPSF
}
