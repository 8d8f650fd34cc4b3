// Package imageops holds the pixel work behind the image commands. Every
// operation takes a decoded image and returns a new one; the input is never
// modified.
package imageops

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/sudosnok/owopondbot/internal/errkind"
)

// ShiftSize is the edge length of shifted output.
const ShiftSize = 1024

// opaque flattens img onto black, like converting to RGB.
func opaque(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.Black), img, image.Pt(0, 0), 1.0)
}

// Shift glitches the image: in each colour channel a random run of samples is
// cut out and the rest slides back over it, leaving black at the end. The
// result is stretched to ShiftSize square.
func Shift(img image.Image, rng *rand.Rand) image.Image {
	dst := opaque(img)
	n := len(dst.Pix) / 4
	if n == 0 {
		return dst
	}

	ch := make([]uint8, n)
	for c := 0; c < 3; c++ {
		for i := 0; i < n; i++ {
			ch[i] = dst.Pix[i*4+c]
		}

		pos := rng.Intn(n)
		low := 1 + rng.Intn(14)
		high := low + rng.Intn(30-low)
		from, to := pos/high, pos/low

		copy(ch[from:], ch[to:])
		clear(ch[n-(to-from):])

		for i := 0; i < n; i++ {
			dst.Pix[i*4+c] = ch[i]
		}
	}

	return imaging.Resize(dst, ShiftSize, ShiftSize, imaging.Lanczos)
}

// JPEGQuality maps a severity in 0..100 to an encoder quality in 1..100.
func JPEGQuality(severity int) (int, error) {
	if severity < 0 || severity > 100 {
		return 0, errkind.New(errkind.ArgumentOutOfRange, "Severity argument must be between 0 and 100 inclusive.")
	}
	return min(max(101-severity, 1), 100), nil
}

// JPEG re-encodes img as a JPEG at the quality severity maps to.
func JPEG(img image.Image, severity int) ([]byte, error) {
	q, err := JPEGQuality(severity)
	if err != nil {
		return nil, err
	}
	return Encode(opaque(img), imaging.JPEG, imaging.JPEGQuality(q))
}

// Diff resizes both images to their mean size and returns the per-pixel
// absolute difference.
func Diff(a, b image.Image) image.Image {
	ab, bb := a.Bounds(), b.Bounds()
	w := max((ab.Dx()+bb.Dx())/2, 1)
	h := max((ab.Dy()+bb.Dy())/2, 1)

	ra := imaging.Resize(opaque(a), w, h, imaging.Lanczos)
	rb := imaging.Resize(opaque(b), w, h, imaging.Lanczos)
	return blend.Difference(ra, rb)
}

// Invert returns the RGB negative.
func Invert(img image.Image) image.Image {
	return imaging.Invert(opaque(img))
}

// Posterize keeps the top bits bits of every colour channel.
func Posterize(img image.Image, bits int) (image.Image, error) {
	if bits < 1 || bits > 8 {
		return nil, errkind.New(errkind.ArgumentOutOfRange, "Bits argument should be between 1 and 8 inclusive.")
	}
	mask := uint8(0xff << (8 - bits))
	return adjust.Apply(opaque(img), func(c color.RGBA) color.RGBA {
		return color.RGBA{R: c.R & mask, G: c.G & mask, B: c.B & mask, A: c.A}
	}), nil
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg int) int {
	return ((deg % 360) + 360) % 360
}

// Rotate turns img counter-clockwise by deg degrees around its centre and
// keeps the original canvas size. A full turn returns an unchanged copy.
func Rotate(img image.Image, deg int) image.Image {
	deg = NormalizeDegrees(deg)
	if deg == 0 {
		return imaging.Clone(img)
	}
	return transform.Rotate(img, -float64(deg), &transform.RotationOptions{ResizeBounds: false})
}

// Encode writes img in format.
func Encode(img image.Image, format imaging.Format, opts ...imaging.EncodeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
