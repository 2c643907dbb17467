package converter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImageDim is the pixel ceiling applied to both image sides.
const DefaultMaxImageDim = 2000

const jpegQuality = 90

var formatMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// ImageInfo is what ProbeImage learns from the header alone.
type ImageInfo struct {
	Width  int
	Height int
	MIME   string
}

// Orientation picks landscape when the image is wider than tall.
func (i ImageInfo) Orientation() Orientation {
	if i.Width > i.Height {
		return Landscape
	}
	return Portrait
}

// ProbeImage reads dimensions and MIME type without decoding pixels.
func ProbeImage(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("read image header: %w", err)
	}
	mime, ok := formatMIME[format]
	if !ok {
		mime = "image/" + format
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, MIME: mime}, nil
}

// OptimizedImage is an image ready to embed into a page.
type OptimizedImage struct {
	Data      []byte
	MIME      string
	Width     int
	Height    int
	Resampled bool
}

// Base64 returns Data encoded for a data: URI.
func (o OptimizedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(o.Data)
}

// DataURI returns the image as an inline data: URI.
func (o OptimizedImage) DataURI() string {
	return "data:" + o.MIME + ";base64," + o.Base64()
}

// OptimizeImage keeps images within maxDim x maxDim untouched. Larger images
// are scaled by min(maxDim/w, maxDim/h) and re-encoded in their own format
// family. Images the codecs cannot decode are returned as-is.
func OptimizeImage(path, mime string, w, h, maxDim int) (OptimizedImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return OptimizedImage{}, err
	}
	orig := OptimizedImage{Data: raw, MIME: mime, Width: w, Height: h}
	if maxDim <= 0 {
		maxDim = DefaultMaxImageDim
	}
	if w <= maxDim && h <= maxDim {
		return orig, nil
	}

	nw, nh := ScaledSize(w, h, maxDim)

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return orig, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out image.Image = dst
	if mime == "image/gif" {
		out = toPaletted(dst, src)
	}
	data, outMIME, err := encodeImage(out, mime)
	if err != nil {
		return orig, nil
	}
	return OptimizedImage{Data: data, MIME: outMIME, Width: nw, Height: nh, Resampled: true}, nil
}

// ScaledSize fits w x h inside maxDim x maxDim keeping the aspect ratio.
func ScaledSize(w, h, maxDim int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
	if scale >= 1 {
		return w, h
	}
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	nw = min(max(nw, 1), maxDim)
	nh = min(max(nh, 1), maxDim)
	return nw, nh
}

// toPaletted maps a resampled GIF back onto a palette with a transparent
// entry: the source palette when there is one, else Plan9 plus transparent.
// Nearest-colour mapping keeps fully transparent pixels on the transparent index.
func toPaletted(img *image.RGBA, src image.Image) *image.Paletted {
	pal := append(color.Palette{color.Transparent}, palette.Plan9[:255]...)
	if p, ok := src.(*image.Paletted); ok && len(p.Palette) > 0 {
		pal = p.Palette
	}
	out := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(out, out.Bounds(), img, image.Point{}, draw.Src)
	return out
}

// encodeImage writes img in the family of mime. WebP has no encoder here, so
// it becomes PNG, which keeps the alpha channel.
func encodeImage(img image.Image, mime string) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error
	switch mime {
	case "image/jpeg", "image/jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
		mime = "image/jpeg"
	case "image/gif":
		err = gif.Encode(&buf, img, nil)
	case "image/bmp":
		err = bmp.Encode(&buf, img)
	default:
		err = png.Encode(&buf, img)
		mime = "image/png"
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mime, nil
}
