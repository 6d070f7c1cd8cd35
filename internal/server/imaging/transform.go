package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"golang.org/x/image/draw"
)

const jpegQuality = 90

// format is a supported upload format keyed by its sniffed content type.
type format struct {
	name        string // as reported by image.DecodeConfig
	contentType string
}

var formats = map[string]format{
	"image/jpeg": {name: "jpeg", contentType: "image/jpeg"},
	"image/png":  {name: "png", contentType: "image/png"},
	"image/gif":  {name: "gif", contentType: "image/gif"},
}

// validate inspects the payload without decoding pixel data.
func validate(data []byte, maxBytes int64, maxPixels int) (format, error) {
	if len(data) == 0 {
		return format{}, fmt.Errorf("%w: image payload is empty", common.ErrValidation)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return format{}, fmt.Errorf("%w: image exceeds %d bytes", common.ErrTooLarge, maxBytes)
	}

	f, ok := formats[http.DetectContentType(data)]
	if !ok {
		return format{}, fmt.Errorf("%w: unsupported image type", common.ErrValidation)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || name != f.name {
		return format{}, fmt.Errorf("%w: unreadable image header", common.ErrValidation)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return format{}, fmt.Errorf("%w: image has no pixels", common.ErrValidation)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return format{}, fmt.Errorf("%w: image is %dx%d", common.ErrTooLarge, cfg.Width, cfg.Height)
	}
	return f, nil
}

// thumbnail decodes data and returns it center-cropped to cover a size x size
// square, resampled with Catmull-Rom and re-encoded in format f.
func thumbnail(data []byte, f format, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	switch f.name {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, dst)
	case "gif":
		err = gif.Encode(&buf, dst, &gif.Options{NumColors: 256})
	default:
		err = fmt.Errorf("no encoder for %s", f.name)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.name, err)
	}
	return buf.Bytes(), nil
}

// coverRect is the largest centered square inside b.
func coverRect(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
