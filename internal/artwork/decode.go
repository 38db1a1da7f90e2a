package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// displayScale maps logical target sizes to pixel sizes. Artwork is
// rendered on displays that pack two pixels per logical unit.
const displayScale = 2

var errEmptyData = errors.New("artwork: empty image data")

// Decode turns raw artwork bytes into a bitmap sized for targetSize
// logical units. Small sources are decoded as-is (no upsampling);
// larger ones are downsampled with a high-quality filter. Operates
// purely in memory.
func Decode(data []byte, targetSize int) (*Image, error) {
	if len(data) == 0 {
		return nil, errEmptyData
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Header sniffing failed; a full decode may still work.
		return fullDecode(data)
	}

	target := targetSize * displayScale
	maxDim := cfg.Width
	if cfg.Height > maxDim {
		maxDim = cfg.Height
	}

	// Within 1.5x of the target: a plain decode is close enough and
	// avoids resampling artifacts on small sources.
	if target <= 0 || maxDim*2 <= target*3 {
		return fullDecode(data)
	}

	img, err := downsample(data, target)
	if err != nil {
		return fullDecode(data)
	}
	return img, nil
}

func fullDecode(data []byte) (*Image, error) {
	m, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("artwork: decode: %w", err)
	}
	return newImage(m), nil
}

func downsample(data []byte, targetPx int) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("artwork: decode for downsample: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("artwork: zero-sized source image")
	}

	// Scale the longer edge to the target, preserving aspect ratio
	var dw, dh int
	if w >= h {
		dw = targetPx
		dh = h * targetPx / w
	} else {
		dh = targetPx
		dw = w * targetPx / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return newImage(dst), nil
}
