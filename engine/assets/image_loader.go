package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("assets: empty image")

// Pixels is a decoded image in tightly packed rows, top-left origin.
// Channels is 1 for grayscale sources and 4 for everything else.
type Pixels struct {
	Width, Height int
	Channels      int
	Data          []byte
}

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func LoadImage(path string) (Pixels, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pixels{}, fmt.Errorf("open %q: %w", path, err)
	}
	px, err := DecodeImage(b)
	if err != nil {
		return Pixels{}, fmt.Errorf("decode %q: %w", path, err)
	}
	return px, nil
}

// DecodeImage decodes an in-memory image.
func DecodeImage(data []byte) (Pixels, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Pixels{}, err
	}
	return FromImage(img)
}

// FromImage repacks img into Pixels.
func FromImage(img image.Image) (Pixels, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return Pixels{}, ErrEmptyImage
	}

	if g, ok := img.(*image.Gray); ok {
		return Pixels{Width: w, Height: h, Channels: 1, Data: repack(g.Pix, g.Stride, w, h, 1)}, nil
	}

	rgba := imageToNRGBA(img)
	return Pixels{Width: w, Height: h, Channels: 4, Data: repack(rgba.Pix, rgba.Stride, w, h, 4)}, nil
}

// repack copies rows into a buffer with stride == w*channels.
func repack(src []byte, stride, w, h, channels int) []byte {
	row := w * channels
	if stride == row && len(src) == row*h {
		return src
	}
	out := make([]byte, row*h)
	for y := 0; y < h; y++ {
		copy(out[y*row:(y+1)*row], src[y*stride:y*stride+row])
	}
	return out
}

// Textures store straight alpha, so convert to NRGBA rather than RGBA.
func imageToNRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
