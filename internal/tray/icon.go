package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

var (
	iconBlue  = color.RGBA{0x00, 0x66, 0xcc, 0xff}
	iconWhite = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Icon returns the tray icon: a white disc on blue. Windows wants an ICO
// container; other platforms take the PNG directly.
func Icon() []byte {
	p := iconPNG(64)
	if runtime.GOOS == "windows" {
		return wrapICO(p, 64)
	}
	return p
}

func iconPNG(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r := float64(size) * 3 / 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, iconWhite)
			} else {
				img.Set(x, y, iconBlue)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// wrapICO embeds a PNG image in a single-entry ICO file.
func wrapICO(p []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.WriteByte(byte(size % 256))
	buf.WriteByte(byte(size % 256))
	buf.WriteByte(0)
	buf.WriteByte(0)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(p)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(p)
	return buf.Bytes()
}
