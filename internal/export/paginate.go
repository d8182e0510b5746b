package export

import (
	"fmt"

	"github.com/jonathan/cv-builder/internal/paper"
)

// epsilon absorbs floating point drift when content ends exactly on a page boundary.
const epsilon = 1e-6

// Slice is the placement of the raster on one page.
type Slice struct {
	// Page is the 1-based page number.
	Page int
	// OffsetY is where the top of the full image is drawn on this page, in mm.
	// It is negative once earlier pages have consumed content.
	OffsetY float64
}

// Layout is the result of paginating a raster onto physical pages.
type Layout struct {
	Page          paper.Size
	Margins       Margins
	ContentWidth  float64
	ContentHeight float64
	ImageWidth    float64
	ImageHeight   float64
	Slices        []Slice
}

// Pages is the number of physical pages.
func (l Layout) Pages() int {
	return len(l.Slices)
}

// Paginate computes how a raster of the given pixel size is spread over pages
// of the given size. The image is scaled to the content width; each page shows
// the next content-height band of it.
func Paginate(rasterW, rasterH int, page paper.Size, m Margins) (Layout, error) {
	if rasterW <= 0 || rasterH <= 0 {
		return Layout{}, fmt.Errorf("paginate %dx%d: %w", rasterW, rasterH, ErrEmptyRaster)
	}
	contentW := page.WidthMM - m.Left - m.Right
	contentH := page.HeightMM - m.Top - m.Bottom
	if contentW <= 0 || contentH <= 0 {
		return Layout{}, &OptionsError{Field: "margins", Message: "margins leave no room for content"}
	}
	imgH := contentW * (float64(rasterH) / float64(rasterW))

	l := Layout{
		Page:          page,
		Margins:       m,
		ContentWidth:  contentW,
		ContentHeight: contentH,
		ImageWidth:    contentW,
		ImageHeight:   imgH,
	}
	remaining, consumed := imgH, 0.0
	for n := 1; remaining > epsilon; n++ {
		l.Slices = append(l.Slices, Slice{Page: n, OffsetY: m.Top - consumed})
		consumed += contentH
		remaining -= contentH
	}
	return l, nil
}
