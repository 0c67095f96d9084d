// Package imaging shrinks oversized photos before they are uploaded.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

const jpegQuality = 85

// Downscale returns data re-encoded so that neither side exceeds maxDim
// pixels, keeping the aspect ratio and the original format. Data that is not
// a JPEG or PNG, or already fits, is returned unchanged with resized == false.
func Downscale(data []byte, maxDim uint) (out []byte, resized bool, err error) {
	if maxDim == 0 {
		return data, false, nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Not an image format we know; the server decides what to do with it.
		return data, false, nil
	}
	if format != "jpeg" && format != "png" {
		return data, false, nil
	}
	if uint(cfg.Width) <= maxDim && uint(cfg.Height) <= maxDim {
		return data, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, errors.Wrap(err, "decode image")
	}
	thumb := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, thumb)
	default:
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "encode %s", format)
	}
	return buf.Bytes(), true, nil
}
