package export

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeImage serializes a raster as a standalone image. WEBP output is
// lossless, so quality only affects JPEG.
func EncodeImage(raster *Raster, opts ImageOptions) ([]byte, error) {
	if raster.Empty() {
		return nil, &EncodingError{Message: "cannot encode empty raster", Cause: ErrEmptyRaster}
	}
	img := raster.opaque()
	var buf bytes.Buffer
	var err error
	switch opts.Format {
	case PNG:
		err = png.Encode(&buf, img)
	case JPEG:
		q := int(math.Round(opts.Quality * 100))
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: q})
	case WEBP:
		err = nativewebp.Encode(&buf, img, nil)
	default:
		return nil, &OptionsError{Field: "format", Message: "unknown image format " + string(opts.Format)}
	}
	if err != nil {
		return nil, &EncodingError{Message: "failed to encode " + string(opts.Format), Cause: err}
	}
	return buf.Bytes(), nil
}
