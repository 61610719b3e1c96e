package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	colorBackground = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	colorPanel      = color.RGBA{R: 252, G: 252, B: 252, A: 255}
	colorText       = color.RGBA{R: 60, G: 60, B: 60, A: 255}
)

// snapshotPanel draws a scene snapshot fitted into the panel, or a
// placeholder when the snapshot is unavailable.
func snapshotPanel(s Snapshot, w, h int) image.Image {
	if s.Image == nil {
		return placeholder(w, h, fmt.Sprintf("%s not available", s.Name))
	}

	panel := newPanel(w, h)
	dst := fitRect(s.Image.Bounds(), image.Rect(0, 24, w, h))
	xdraw.CatmullRom.Scale(panel, dst, s.Image, s.Image.Bounds(), xdraw.Src, nil)

	title := s.Name
	if s.Caption != "" {
		title = fmt.Sprintf("%s - %s", s.Name, s.Caption)
	}
	drawLabel(panel, title, 8, 16, false)
	return panel
}

// placeholder renders a panel with a centered message. Used wherever an
// input is missing so the composite image always has four panels.
func placeholder(w, h int, text string) image.Image {
	panel := newPanel(w, h)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  panel,
		Src:  image.NewUniform(colorText),
		Face: face,
	}
	tw := d.MeasureString(text).Ceil()
	d.Dot = fixed.Point26_6{
		X: fixed.I((w - tw) / 2),
		Y: fixed.I(h / 2),
	}
	d.DrawString(text)
	return panel
}

// drawLabel draws a single text line. With rightAlign the x offset is
// measured from the right edge instead.
func drawLabel(dst *image.RGBA, text string, x, y int, rightAlign bool) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(colorText),
		Face: face,
	}
	if rightAlign {
		tw := d.MeasureString(text).Ceil()
		x = dst.Bounds().Dx() - tw - 12 - x
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}

func newPanel(w, h int) *image.RGBA {
	panel := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(panel, colorPanel)
	return panel
}

func fill(img *image.RGBA, c color.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// toRGBA returns img as *image.RGBA, copying only when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// fitRect scales src to fit inside bounds preserving aspect ratio,
// centered.
func fitRect(src, bounds image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	bw, bh := bounds.Dx(), bounds.Dy()
	if sw == 0 || sh == 0 || bw == 0 || bh == 0 {
		return bounds
	}

	scale := float64(bw) / float64(sw)
	if s := float64(bh) / float64(sh); s < scale {
		scale = s
	}
	w := int(float64(sw) * scale)
	h := int(float64(sh) * scale)

	x0 := bounds.Min.X + (bw-w)/2
	y0 := bounds.Min.Y + (bh-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}
