package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels caps width*height of decoded uploads when no limit is set.
const DefaultMaxPixels = 178956970

// Preprocess decodes payload, resizes it to the variant resolution and returns
// the normalized input tensor in the requested layout. Every failure is an
// input error. Images whose header declares more than maxPixels pixels are
// rejected before any pixel buffer is allocated; maxPixels <= 0 means
// DefaultMaxPixels.
func Preprocess(payload []byte, v Variant, layout Layout, maxPixels int) ([]float32, error) {
	if len(payload) == 0 {
		return nil, inputError{err: errors.New("empty payload")}
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	hdr, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, inputError{err: fmt.Errorf("decode image header: %w", err)}
	}
	if int64(hdr.Width)*int64(hdr.Height) > int64(maxPixels) {
		return nil, inputError{err: fmt.Errorf("image is %dx%d, above the %d pixel limit", hdr.Width, hdr.Height, maxPixels)}
	}
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, inputError{err: fmt.Errorf("decode image: %w", err)}
	}
	if img.Bounds().Empty() {
		return nil, inputError{err: errors.New("image has no pixels")}
	}
	if v.Size <= 0 || v.Normalize == nil {
		return nil, fmt.Errorf("variant %q is not configured", v.Name)
	}
	size := v.Size
	resized := resize.Resize(uint(size), uint(size), img, resize.Bicubic)
	rb := resized.Bounds()
	if rb.Dx() != size || rb.Dy() != size {
		return nil, inputError{err: fmt.Errorf("resize produced %dx%d, want %dx%d", rb.Dx(), rb.Dy(), size, size)}
	}

	n := size * size
	out := make([]float32, 3*n)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			c0, c1, c2 := v.Normalize(float32(r>>8), float32(g>>8), float32(b>>8))
			idx := y*size + x
			if layout == LayoutNCHW {
				out[idx] = c0
				out[n+idx] = c1
				out[2*n+idx] = c2
			} else {
				out[3*idx] = c0
				out[3*idx+1] = c1
				out[3*idx+2] = c2
			}
		}
	}
	return out, nil
}
