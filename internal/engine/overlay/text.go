// Package overlay draws fixed instruction text on top of the scene.
package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Line is a string drawn with its baseline starting at (X, Y) screen pixels,
// measured from the top-left corner.
type Line struct {
	Text string
	X, Y int
}

// Instructions are the lines shown every frame.
var Instructions = []Line{
	{Text: "R to toggle Wireframe", X: 10, Y: 30},
	{Text: "Scroll up and down to zoom in and out", X: 10, Y: 50},
}

// face is the bitmap font used for all lines.
var face font.Face = basicfont.Face7x13

// Rasterize draws lines in white on a transparent RGBA canvas whose origin is
// the screen's top-left corner. Glyphs are enlarged by scale with nearest
// neighbour sampling; baselines stay at the given positions.
func Rasterize(lines []Line, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	// Canvas size
	var w, h int
	for _, l := range lines {
		right := l.X + font.MeasureString(face, l.Text).Ceil()*scale
		bottom := l.Y - ascent*scale + height*scale
		w = max(w, right)
		h = max(h, bottom)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))

	for _, l := range lines {
		if l.Text == "" {
			continue
		}
		src := rasterizeLine(l.Text, ascent, height)
		dst := image.Rect(0, 0, src.Rect.Dx()*scale, src.Rect.Dy()*scale).
			Add(image.Pt(l.X, l.Y-ascent*scale))
		draw.NearestNeighbor.Scale(canvas, dst, src, src.Rect, draw.Over, nil)
	}
	return canvas
}

func rasterizeLine(text string, ascent, height int) *image.RGBA {
	width := font.MeasureString(face, text).Ceil()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)
	return img
}
