package detector

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const boxThickness = 2

var (
	white = color.RGBA{255, 255, 255, 255}

	severityColors = map[Severity]color.RGBA{
		SeverityMinor:    {0, 255, 0, 255},   // green
		SeverityModerate: {255, 165, 0, 255}, // orange
		SeveritySevere:   {255, 0, 0, 255},   // red
	}
)

// Annotator draws severity-colored bounding boxes and labels onto a raster.
// It mutates the target image; callers hand it a copy, never the upload.
type Annotator struct {
	face font.Face
}

// NewAnnotator creates an annotator with the default label font.
func NewAnnotator() *Annotator {
	return &Annotator{face: basicfont.Face7x13}
}

// Annotate draws one detection: a 2px rectangle around the box and a
// "<class> (<severity> <confidence>)" label on a filled background just above
// it, clamped so the label never leaves the top edge.
func (a *Annotator) Annotate(img *image.RGBA, det Detection) {
	colr, ok := severityColors[det.Severity]
	if !ok {
		colr = white
	}

	xMin := int(det.X - det.Width/2)
	yMin := int(det.Y - det.Height/2)
	xMax := int(det.X + det.Width/2)
	yMax := int(det.Y + det.Height/2)

	a.drawBox(img, image.Rect(xMin, yMin, xMax, yMax), colr)

	label := fmt.Sprintf("%s (%s %.2f)", det.Class, det.Severity, det.Confidence)
	a.drawLabel(img, label, xMin, yMin, colr)
}

func (a *Annotator) drawBox(img *image.RGBA, r image.Rectangle, colr color.RGBA) {
	src := image.NewUniform(colr)
	t := boxThickness

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, edge := range edges {
		draw.Draw(img, edge.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

func (a *Annotator) drawLabel(img *image.RGBA, label string, x, yBox int, colr color.RGBA) {
	metrics := a.face.Metrics()
	labelHeight := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	labelWidth := font.MeasureString(a.face, label).Ceil()

	// Baseline sits just above the box; pushed down when the box touches the
	// top edge so the text stays visible.
	yText := yBox - 10
	if minY := labelHeight + 10; yText < minY {
		yText = minY
	}

	background := image.Rect(x, yText-labelHeight-5, x+labelWidth, yText+5)
	draw.Draw(img, background.Intersect(img.Bounds()), image.NewUniform(colr), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(white),
		Face: a.face,
		Dot:  fixed.P(x, yText),
	}
	drawer.DrawString(label)
}
