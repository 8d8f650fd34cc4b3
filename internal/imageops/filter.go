package imageops

import (
	"image"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/sudosnok/owopondbot/internal/errkind"
)

type kernel struct {
	size   int
	scale  float64
	offset float64
	values []float64
}

var filters = map[string]kernel{
	"blur": {5, 16, 0, []float64{
		1, 1, 1, 1, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 1, 1, 1, 1,
	}},
	"contour":  {3, 1, 255, []float64{-1, -1, -1, -1, 8, -1, -1, -1, -1}},
	"detail":   {3, 6, 0, []float64{0, -1, 0, -1, 10, -1, 0, -1, 0}},
	"edge":     {3, 2, 0, []float64{-1, -1, -1, -1, 10, -1, -1, -1, -1}},
	"moreedge": {3, 1, 0, []float64{-1, -1, -1, -1, 9, -1, -1, -1, -1}},
	"emboss":   {3, 1, 128, []float64{-1, 0, 0, 0, 1, 0, 0, 0, 0}},
	"find":     {3, 1, 0, []float64{-1, -1, -1, -1, 8, -1, -1, -1, -1}},
	"sharpen":  {3, 16, 0, []float64{-2, -2, -2, -2, 32, -2, -2, -2, -2}},
	"smooth":   {3, 13, 0, []float64{1, 1, 1, 1, 5, 1, 1, 1, 1}},
	"moresmooth": {5, 100, 0, []float64{
		1, 1, 1, 1, 1,
		1, 5, 5, 5, 1,
		1, 5, 44, 5, 1,
		1, 5, 5, 5, 1,
		1, 1, 1, 1, 1,
	}},
}

// FilterNames lists the accepted filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter applies the named convolution filter. Names are case-insensitive.
func Filter(img image.Image, name string) (image.Image, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return nil, errkind.New(errkind.ArgumentOutOfRange,
			"Filter must be one of: %s.", strings.Join(FilterNames(), ", "))
	}

	k := convolution.NewKernel(f.size, f.size)
	for i, v := range f.values {
		k.Matrix[i] = v / f.scale
	}
	return convolution.Convolve(opaque(img), k, &convolution.Options{
		Bias:      f.offset,
		KeepAlpha: true,
	}), nil
}
