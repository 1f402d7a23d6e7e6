// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source turns one input specification (a PDF path, a direct image
// URL, a webpage URL, or a local image file) into an ordered sequence of
// raw images. See docs/ARCHITECTURE.md § Sources.
package source

import (
	"context"

	"github.com/pdiddy/medscan/pkg/types"
)

// Source yields the ordered raw images of one input.
//
// Failure policy: an unreachable source (missing file, unreadable PDF,
// network or HTTP failure on the source itself) returns an error wrapping
// types.ErrSourceUnreachable and no items. An extraction failure on one
// item inside an otherwise-valid source is returned as a SkipNote; indices
// are assigned at discovery, so skipped items keep their slot and
// len(images)+len(skips) covers every discovered item exactly once.
type Source interface {
	// Describe names the input for report and error messages.
	Describe() string

	// Images extracts the source's raw images in document order.
	Images(ctx context.Context) ([]types.RawImage, []types.SkipNote, error)
}
