// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize decodes raw image bytes into the model's canonical
// input form: a square three-channel pixel grid of fixed side.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	// Raster decoders registered with image.Decode. GIF, JPEG, and PNG
	// come from the standard library; BMP, TIFF, and WebP from x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"

	"github.com/pdiddy/medscan/pkg/types"
)

// Normalize decodes data, forces three-channel RGB by compositing over
// white, and resizes to side×side with bilinear resampling. Bilinear is
// deterministic, so the same bytes always produce the same grid.
//
// Unrecognized containers wrap types.ErrUnsupportedFormat; recognized
// containers with bad payloads wrap types.ErrCorruptData.
func Normalize(data []byte, side int) (*types.NormalizedImage, error) {
	if side <= 0 {
		return nil, fmt.Errorf("invalid target side %d", side)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decoding image: %v: %w", err, types.ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decoding image: %v: %w", err, types.ErrCorruptData)
	}

	resized := resize.Resize(uint(side), uint(side), img, resize.Bilinear)

	rect := image.Rect(0, 0, side, side)
	rgba := image.NewRGBA(rect)
	draw.Draw(rgba, rect, image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rect, resized, resized.Bounds().Min, draw.Over)

	return &types.NormalizedImage{
		Pixels:       rgba,
		Side:         side,
		ColorModel:   "rgb",
		SourceFormat: format,
	}, nil
}
