// Package paper describes physical page formats and converts between
// millimetres and CSS pixels.
package paper

import (
	"fmt"
	"math"
	"strings"
)

// Format is a physical page format.
type Format string

// Supported page formats.
const (
	A4     Format = "a4"
	Letter Format = "letter"
	Legal  Format = "legal"
)

// Orientation is the page orientation.
type Orientation string

// Supported orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// CSSPixelsPerInch is the CSS reference pixel density.
const CSSPixelsPerInch = 96.0

// MillimetresPerInch converts inches to millimetres.
const MillimetresPerInch = 25.4

// Size is a page size in millimetres.
type Size struct {
	WidthMM  float64
	HeightMM float64
}

var portraitSizes = map[Format]Size{
	A4:     {WidthMM: 210, HeightMM: 297},
	Letter: {WidthMM: 216, HeightMM: 279},
	Legal:  {WidthMM: 216, HeightMM: 356},
}

// ParseFormat parses a format name. The empty string means A4.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return A4, nil
	}
	if _, ok := portraitSizes[f]; !ok {
		return "", fmt.Errorf("unknown page format %q", s)
	}
	return f, nil
}

// ParseOrientation parses an orientation name. The empty string means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Portrait, nil
	case Portrait, Landscape:
		return o, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Dimensions returns the page size for a format and orientation. Unknown
// formats fall back to A4.
func Dimensions(f Format, o Orientation) Size {
	s, ok := portraitSizes[f]
	if !ok {
		s = portraitSizes[A4]
	}
	if o == Landscape {
		return Size{WidthMM: s.HeightMM, HeightMM: s.WidthMM}
	}
	return s
}

// MMToPx converts millimetres to CSS pixels.
func MMToPx(mm float64) float64 {
	return mm / MillimetresPerInch * CSSPixelsPerInch
}

// PixelWidth is the rendered page width in whole CSS pixels.
func PixelWidth(f Format, o Orientation) int {
	return int(math.Round(MMToPx(Dimensions(f, o).WidthMM)))
}

// PixelHeight is the rendered page height in whole CSS pixels.
func PixelHeight(f Format, o Orientation) int {
	return int(math.Round(MMToPx(Dimensions(f, o).HeightMM)))
}

// Inches returns the page size in inches, as expected by print pipelines.
func (s Size) Inches() (width, height float64) {
	return s.WidthMM / MillimetresPerInch, s.HeightMM / MillimetresPerInch
}
