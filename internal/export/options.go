package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/cv-builder/internal/paper"
	"golang.org/x/text/encoding/charmap"
)

// Quality bounds. PDF quality is the capture scale, image quality the
// encoder quality factor.
const (
	MinPDFQuality     = 1.0
	MaxPDFQuality     = 3.0
	DefaultPDFQuality = 2.0

	MinImageQuality     = 0.5
	MaxImageQuality     = 1.0
	DefaultImageQuality = 0.95

	DefaultMarginMM = 10.0
)

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins returns 10mm on every side.
func DefaultMargins() Margins {
	return Margins{Top: DefaultMarginMM, Right: DefaultMarginMM, Bottom: DefaultMarginMM, Left: DefaultMarginMM}
}

// PDFOptions configures a PDF export.
type PDFOptions struct {
	Format        paper.Format      `json:"format"`
	Orientation   paper.Orientation `json:"orientation"`
	Quality       float64           `json:"quality"`
	Margins       *Margins          `json:"margins,omitempty"`
	IncludeHeader bool              `json:"includeHeader"`
	IncludeFooter bool              `json:"includeFooter"`
	HeaderText    string            `json:"headerText,omitempty"`
	FooterText    string            `json:"footerText,omitempty"`
	Filename      string            `json:"filename,omitempty"`
	// FontFile is a TrueType font used for header and footer text. Without
	// one the core Helvetica font is used, which only covers Windows-1252.
	FontFile string `json:"-"`
}

// Normalize validates the options, fills defaults and clamps quality.
func (o PDFOptions) Normalize() (PDFOptions, error) {
	f, err := paper.ParseFormat(string(o.Format))
	if err != nil {
		return o, &OptionsError{Field: "format", Message: err.Error()}
	}
	orient, err := paper.ParseOrientation(string(o.Orientation))
	if err != nil {
		return o, &OptionsError{Field: "orientation", Message: err.Error()}
	}
	o.Format, o.Orientation = f, orient
	o.Quality = clampQuality(o.Quality, MinPDFQuality, MaxPDFQuality, DefaultPDFQuality)

	m := DefaultMargins()
	if o.Margins != nil {
		m = *o.Margins
	}
	sides := []struct {
		name string
		v    float64
	}{{"top", m.Top}, {"right", m.Right}, {"bottom", m.Bottom}, {"left", m.Left}}
	for _, s := range sides {
		if s.v < 0 || math.IsNaN(s.v) || math.IsInf(s.v, 0) {
			return o, &OptionsError{Field: "margins." + s.name, Message: fmt.Sprintf("must be a non-negative number, got %v", s.v)}
		}
	}
	size := paper.Dimensions(o.Format, o.Orientation)
	if m.Left+m.Right >= size.WidthMM || m.Top+m.Bottom >= size.HeightMM {
		return o, &OptionsError{Field: "margins", Message: "margins leave no room for content"}
	}
	o.Margins = &m
	o.HeaderText = strings.TrimSpace(o.HeaderText)
	o.FooterText = strings.TrimSpace(o.FooterText)
	if o.FontFile == "" {
		if r, ok := firstUnencodable(o.HeaderText); !ok {
			return o, &OptionsError{Field: "headerText", Message: fmt.Sprintf("character %q needs a text font", r)}
		}
		if r, ok := firstUnencodable(o.FooterText); !ok {
			return o, &OptionsError{Field: "footerText", Message: fmt.Sprintf("character %q needs a text font", r)}
		}
	}
	return o, nil
}

// firstUnencodable returns the first rune of s the core PDF fonts cannot
// show, and false, or true when every rune is covered.
func firstUnencodable(s string) (rune, bool) {
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return r, false
		}
	}
	return 0, true
}

// PageSize returns the page size implied by format and orientation.
func (o PDFOptions) PageSize() paper.Size {
	return paper.Dimensions(o.Format, o.Orientation)
}

// ImageFormat is a standalone image encoding.
type ImageFormat string

// Supported image formats.
const (
	PNG  ImageFormat = "png"
	JPEG ImageFormat = "jpeg"
	WEBP ImageFormat = "webp"
)

// ImageOptions configures an image export.
type ImageOptions struct {
	Format   ImageFormat `json:"format"`
	Quality  float64     `json:"quality"`
	Filename string      `json:"filename,omitempty"`
	// Scale is the capture scale. Zero means 1x.
	Scale float64 `json:"scale,omitempty"`
}

// Normalize validates the options, fills defaults and clamps quality.
func (o ImageOptions) Normalize() (ImageOptions, error) {
	switch f := ImageFormat(strings.ToLower(strings.TrimSpace(string(o.Format)))); f {
	case "":
		o.Format = PNG
	case "jpg":
		o.Format = JPEG
	case PNG, JPEG, WEBP:
		o.Format = f
	default:
		return o, &OptionsError{Field: "format", Message: fmt.Sprintf("unknown image format %q", o.Format)}
	}
	o.Quality = clampQuality(o.Quality, MinImageQuality, MaxImageQuality, DefaultImageQuality)
	o.Scale = clampQuality(o.Scale, MinPDFQuality, MaxPDFQuality, MinPDFQuality)
	return o, nil
}

// Extension is the filename extension for the format.
func (f ImageFormat) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType is the MIME type for the format.
func (f ImageFormat) ContentType() string {
	return "image/" + string(f)
}

func clampQuality(v, lo, hi, def float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}
