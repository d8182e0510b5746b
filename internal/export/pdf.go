package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
)

// documentEpoch is stamped as creation and modification date so identical
// inputs produce identical bytes.
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	rasterImageName = "cv-raster"
	textFontFamily  = "cv-text"
	textFontSize    = 8.0
	textRowHeight   = 4.0
)

// EncodePDF places one clipped slice of the raster on every page of the
// layout and returns the serialized document.
func EncodePDF(raster *Raster, layout Layout, opts PDFOptions) ([]byte, error) {
	if raster.Empty() {
		return nil, &EncodingError{Message: "cannot encode empty raster", Cause: ErrEmptyRaster}
	}
	if layout.Pages() == 0 {
		return nil, &EncodingError{Message: "layout has no pages"}
	}

	var img bytes.Buffer
	if err := png.Encode(&img, raster.opaque()); err != nil {
		return nil, &EncodingError{Message: "failed to encode raster", Cause: err}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: layout.Page.WidthMM, Ht: layout.Page.HeightMM},
	})
	pdf.SetCreationDate(documentEpoch)
	pdf.SetModificationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opts.Filename != "" {
		pdf.SetTitle(opts.Filename, true)
	}

	imgOpts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(rasterImageName, imgOpts, bytes.NewReader(img.Bytes()))
	if err := pdf.Error(); err != nil {
		return nil, &EncodingError{Message: "failed to embed raster", Cause: err}
	}

	family, tr := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontFile != "" {
		ttf, err := os.ReadFile(opts.FontFile)
		if err != nil {
			return nil, &EncodingError{Message: "failed to read text font", Cause: err}
		}
		pdf.AddUTF8FontFromBytes(textFontFamily, "", ttf)
		if err := pdf.Error(); err != nil {
			return nil, &EncodingError{Message: "failed to load text font " + opts.FontFile, Cause: err}
		}
		family, tr = textFontFamily, func(s string) string { return s }
	}

	m := layout.Margins
	total := layout.Pages()
	for _, s := range layout.Slices {
		pdf.AddPage()
		pdf.ClipRect(m.Left, m.Top, layout.ContentWidth, layout.ContentHeight, false)
		pdf.ImageOptions(rasterImageName, m.Left, s.OffsetY, layout.ImageWidth, layout.ImageHeight, false, imgOpts, 0, "")
		pdf.ClipEnd()

		if opts.IncludeHeader && opts.HeaderText != "" {
			pdf.SetFont(family, "", textFontSize)
			pdf.SetTextColor(100, 100, 100)
			pdf.SetXY(m.Left, headerY(m))
			pdf.CellFormat(layout.ContentWidth, textRowHeight, tr(opts.HeaderText), "", 0, "L", false, 0, "")
		}
		if opts.IncludeFooter {
			pdf.SetFont(family, "", textFontSize)
			pdf.SetTextColor(100, 100, 100)
			y := footerY(layout)
			if opts.FooterText != "" {
				pdf.SetXY(m.Left, y)
				pdf.CellFormat(layout.ContentWidth, textRowHeight, tr(opts.FooterText), "", 0, "L", false, 0, "")
			}
			pdf.SetXY(m.Left, y)
			pdf.CellFormat(layout.ContentWidth, textRowHeight, fmt.Sprintf("Page %d / %d", s.Page, total), "", 0, "R", false, 0, "")
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, &EncodingError{Message: "failed to write pdf", Cause: err}
	}
	return out.Bytes(), nil
}

// headerY centers the header row in the top margin.
func headerY(m Margins) float64 {
	y := (m.Top - textRowHeight) / 2
	if y < 0 {
		return 0
	}
	return y
}

// footerY centers the footer row in the bottom margin.
func footerY(l Layout) float64 {
	y := l.Page.HeightMM - l.Margins.Bottom + (l.Margins.Bottom-textRowHeight)/2
	if limit := l.Page.HeightMM - textRowHeight; y > limit {
		return limit
	}
	return y
}
