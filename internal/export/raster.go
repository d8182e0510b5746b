package export

import (
	"image"
	"image/color"
	"image/draw"
)

// Raster is a captured image of a visual tree.
type Raster struct {
	Image image.Image
	// Scale is the device pixel ratio the image was captured at.
	Scale float64
}

// Width is the raster width in pixels.
func (r *Raster) Width() int {
	if r == nil || r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dx()
}

// Height is the raster height in pixels.
func (r *Raster) Height() int {
	if r == nil || r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dy()
}

// Empty reports whether the raster has no pixels.
func (r *Raster) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// opaque composites the raster onto white so encoders see no alpha channel.
func (r *Raster) opaque() *image.RGBA {
	b := r.Image.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), r.Image, b.Min, draw.Over)
	return dst
}
