// Package icon draws the tray icons at startup.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const size = 64

var (
	colorIdle    = color.RGBA{128, 128, 128, 255} // grey
	colorRunning = color.RGBA{80, 200, 120, 255}  // green
	colorSaving  = color.RGBA{230, 160, 50, 255}  // orange
)

// Tray icons, PNG encoded.
var (
	Idle    = mustRender(colorIdle)
	Running = mustRender(colorRunning)
	Saving  = mustRender(colorSaving)
)

func mustRender(c color.RGBA) []byte {
	data, err := Render(c)
	if err != nil {
		panic(err)
	}
	return data
}

// Render draws a window outline with a filled title bar in color c.
func Render(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	const (
		left, top     = 6, 10
		right, bottom = size - 6, size - 10
		border        = 3
		titleBar      = 12
	)

	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			edge := x < left+border || x >= right-border || y >= bottom-border
			if y < top+titleBar || edge {
				img.Set(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
