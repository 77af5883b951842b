// Package qrsvg draws QR codes as inline SVG so that rendered reports carry no
// raster images or external references.
package qrsvg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// MaxBytes is the byte-mode capacity of a version 40 symbol at level M.
const MaxBytes = 2331

// Level is the error correction level used for every code.
const Level = qrcode.Medium

// ErrCapacity is returned when the content does not fit into a single symbol.
var ErrCapacity = errors.New("content exceeds QR capacity")

// Generate returns an SVG document of size×size pixels showing a QR code that
// encodes text. The symbol has no quiet zone; the caller provides margins.
// Output is deterministic for a given text and size.
func Generate(text string, size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid size %d", size)
	}
	if len(text) > MaxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrCapacity, len(text), MaxBytes)
	}

	q, err := qrcode.New(text, Level)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	q.DisableBorder = true
	modules := q.Bitmap()

	return draw(modules, size), nil
}

func draw(modules [][]bool, size int) string {
	n := len(modules)
	cell := float64(size) / float64(n)
	s := coord(cell)

	var path strings.Builder
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !modules[row][col] {
				continue
			}
			path.WriteString("M")
			path.WriteString(coord(float64(col) * cell))
			path.WriteString(",")
			path.WriteString(coord(float64(row) * cell))
			path.WriteString("h" + s + "v" + s + "h-" + s + "z")
		}
	}

	dim := strconv.Itoa(size)
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 ` + dim + ` ` + dim + `" width="` + dim + `" height="` + dim + `">`)
	b.WriteString(`<rect width="` + dim + `" height="` + dim + `" fill="#fff"/>`)
	b.WriteString(`<path d="` + path.String() + `" fill="#000"/>`)
	b.WriteString(`</svg>`)
	return b.String()
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
