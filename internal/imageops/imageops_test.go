package imageops

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/sudosnok/owopondbot/internal/errkind"
)

func createTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 90, 255})
		}
	}
	return img
}

func samePixels(t *testing.T, a, b image.Image) bool {
	t.Helper()
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	na, nb := imaging.Clone(a), imaging.Clone(b)
	return bytes.Equal(na.Pix, nb.Pix)
}

func TestShift(t *testing.T) {
	src := createTestImage(32, 32)
	before := imaging.Clone(src)

	out := Shift(src, rand.New(rand.NewSource(1)))
	if out.Bounds().Dx() != ShiftSize || out.Bounds().Dy() != ShiftSize {
		t.Errorf("size = %v, want %dx%d", out.Bounds().Size(), ShiftSize, ShiftSize)
	}
	if !samePixels(t, src, before) {
		t.Error("Shift modified its input")
	}
}

func TestJPEGQuality(t *testing.T) {
	tests := []struct {
		severity int
		want     int
		wantErr  bool
	}{
		{0, 100, false},
		{1, 100, false},
		{15, 86, false},
		{100, 1, false},
		{-1, 0, true},
		{101, 0, true},
	}
	for _, tt := range tests {
		got, err := JPEGQuality(tt.severity)
		if tt.wantErr {
			if !errors.Is(err, errkind.ArgumentOutOfRange) {
				t.Errorf("severity %d: err = %v, want ArgumentOutOfRange", tt.severity, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("severity %d: got %d, %v; want %d", tt.severity, got, err, tt.want)
		}
	}
}

func TestJPEG_KeepsDimensions(t *testing.T) {
	data, err := JPEG(createTestImage(50, 20), 90)
	if err != nil {
		t.Fatalf("JPEG: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" || cfg.Width != 50 || cfg.Height != 20 {
		t.Errorf("got %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestDiff(t *testing.T) {
	a := imaging.New(10, 10, color.NRGBA{200, 100, 50, 255})
	b := imaging.New(30, 20, color.NRGBA{50, 100, 200, 255})

	out := Diff(a, b)
	if got := out.Bounds().Size(); got != image.Pt(20, 15) {
		t.Fatalf("size = %v, want 20x15", got)
	}
	r, g, bl, _ := out.At(10, 7).RGBA()
	if r>>8 < 145 || r>>8 > 155 || g>>8 > 5 || bl>>8 < 145 || bl>>8 > 155 {
		t.Errorf("pixel = %d,%d,%d, want about 150,0,150", r>>8, g>>8, bl>>8)
	}

	same := Diff(a, a)
	r, g, bl, _ = same.At(5, 5).RGBA()
	if r|g|bl != 0 {
		t.Errorf("diff of identical images not black: %d,%d,%d", r, g, bl)
	}
}

func TestInvert(t *testing.T) {
	out := imaging.Clone(Invert(imaging.New(2, 2, color.NRGBA{10, 20, 30, 255})))
	if c := out.NRGBAAt(1, 1); c != (color.NRGBA{245, 235, 225, 255}) {
		t.Errorf("inverted pixel = %v", c)
	}
}

func TestPosterize(t *testing.T) {
	src := imaging.New(2, 2, color.NRGBA{0xff, 0x81, 0x7f, 0xff})

	out, err := Posterize(src, 1)
	if err != nil {
		t.Fatalf("Posterize: %v", err)
	}
	if c := imaging.Clone(out).NRGBAAt(0, 0); c != (color.NRGBA{0x80, 0x80, 0x00, 0xff}) {
		t.Errorf("1 bit pixel = %v", c)
	}

	full, err := Posterize(src, 8)
	if err != nil || !samePixels(t, full, src) {
		t.Errorf("8 bits should be identity, err = %v", err)
	}

	for _, bits := range []int{0, 9} {
		if _, err := Posterize(src, bits); !errors.Is(err, errkind.ArgumentOutOfRange) {
			t.Errorf("bits %d: err = %v", bits, err)
		}
	}
}

func TestFilter(t *testing.T) {
	src := createTestImage(16, 12)
	for _, name := range FilterNames() {
		out, err := Filter(src, name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if out.Bounds().Size() != src.Bounds().Size() {
			t.Errorf("%s changed size to %v", name, out.Bounds().Size())
		}
	}
	if _, err := Filter(src, "SMOOTH"); err != nil {
		t.Errorf("names should be case-insensitive: %v", err)
	}
	if _, err := Filter(src, "gaussian"); !errors.Is(err, errkind.ArgumentOutOfRange) {
		t.Errorf("unknown filter err = %v", err)
	}
	if len(FilterNames()) != 10 {
		t.Errorf("got %d filters, want 10", len(FilterNames()))
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := map[int]int{0: 0, 40: 40, 360: 0, 400: 40, 720: 0, -90: 270, -360: 0, -450: 270}
	for in, want := range tests {
		if got := NormalizeDegrees(in); got != want {
			t.Errorf("NormalizeDegrees(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRotate(t *testing.T) {
	src := createTestImage(24, 16)

	for _, deg := range []int{0, 360, -720} {
		out := Rotate(src, deg)
		data, err := Encode(out, imaging.PNG)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		back, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !samePixels(t, back, src) {
			t.Errorf("rotate %d changed pixels", deg)
		}
	}

	if got := Rotate(src, 45).Bounds().Size(); got != image.Pt(24, 16) {
		t.Errorf("rotate 45 canvas = %v, want 24x16", got)
	}
}
