package artwork

import "image"

// Image is a decoded bitmap together with its memory cost. Cost is
// always recomputed from the decoded dimensions (RGBA-equivalent
// footprint), never trusted from the input bytes.
type Image struct {
	Pixels image.Image
	Width  int
	Height int
	Cost   int64
}

func newImage(m image.Image) *Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	return &Image{
		Pixels: m,
		Width:  w,
		Height: h,
		Cost:   int64(w) * int64(h) * 4,
	}
}
