package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Canonical is a decoded, upright, opaque RGB image ready for classification.
type Canonical struct {
	Image  *image.NRGBA
	Format string
}

func (c *Canonical) Width() int  { return c.Image.Bounds().Dx() }
func (c *Canonical) Height() int { return c.Image.Bounds().Dy() }

// Normalize decodes data, applies any EXIF orientation and drops the alpha channel.
func Normalize(data []byte) (*Canonical, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, b.Dx(), b.Dy())
	}

	return &Canonical{Image: toRGB(img), Format: format}, nil
}

// toRGB copies img into a zero-origin NRGBA buffer with every pixel fully opaque.
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
