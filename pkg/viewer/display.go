package viewer

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// ImageView draws an image with upper half blocks, two image rows per terminal row,
// followed by a one-line status bar.
type ImageView struct {
	Image  *image.RGBA
	Status string
}

// ImageSize returns the image resolution that fills a terminal of cols x rows cells
// while leaving the last row for the status bar
func ImageSize(cols, rows int) (width, height int) {
	return max(1, cols), max(1, 2*(rows-1))
}

// Draw implements uv.Drawable
func (v *ImageView) Draw(scr uv.Screen, area uv.Rectangle) {
	imageArea, statusArea := uv.SplitVertical(area, uv.Fixed(max(0, area.Dy()-1)))

	if v.Image != nil && !imageArea.Empty() {
		bounds := v.Image.Bounds()
		cols, rows := imageArea.Dx(), imageArea.Dy()

		for row := 0; row < rows; row++ {
			topY := bounds.Min.Y + (2*row)*bounds.Dy()/(2*rows)
			botY := bounds.Min.Y + (2*row+1)*bounds.Dy()/(2*rows)

			for col := 0; col < cols; col++ {
				x := bounds.Min.X + col*bounds.Dx()/cols
				scr.SetCell(imageArea.Min.X+col, imageArea.Min.Y+row, &uv.Cell{
					Content: "▀",
					Width:   1,
					Style: uv.Style{
						Fg: opaque(v.Image.RGBAAt(x, topY)),
						Bg: opaque(v.Image.RGBAAt(x, botY)),
					},
				})
			}
		}
	}

	if !statusArea.Empty() {
		uv.NewStyledString(v.Status).Draw(scr, statusArea)
	}
}

func opaque(c color.RGBA) color.Color {
	c.A = 255
	return c
}
