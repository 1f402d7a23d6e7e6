// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the medscan pipeline.
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import (
	"image"
	"time"
)

// RawImage is an image as extracted from a source, before decoding.
// It is immutable once produced; its lifetime ends after normalization.
type RawImage struct {
	// Origin names where the image came from: a file path, a URL, or a
	// path#pageN.name locator for a PDF-embedded image.
	Origin string `json:"origin" yaml:"origin"`

	// Index is the zero-based position of the image in the source's
	// yield order. Indices are assigned at discovery, so skipped items
	// keep their slot.
	Index int `json:"index" yaml:"index"`

	// Data holds the raw encoded bytes.
	Data []byte `json:"-" yaml:"-"`

	// Format is the declared or sniffed container format ("png", "jpeg", ...).
	// May be empty when the source cannot tell.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// SkipNote records an item a source discovered but could not extract.
// Sources report these instead of silently dropping items.
type SkipNote struct {
	Origin string `json:"origin" yaml:"origin"`
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}

// NormalizedImage is a decoded image in the model's canonical form:
// a square RGB pixel grid of side Side, alpha composited over white.
type NormalizedImage struct {
	// Pixels is the decoded grid. The backing store is RGBA but the
	// alpha channel is fully opaque after normalization.
	Pixels *image.RGBA

	// Side is the square dimension in pixels.
	Side int

	// ColorModel tags the channel layout. Always "rgb" today.
	ColorModel string

	// SourceFormat is the container format the image was decoded from.
	SourceFormat string
}

// ClassificationResult is the model's verdict for one image.
// Never mutated after creation.
type ClassificationResult struct {
	Origin string `json:"origin" yaml:"origin"`
	Index  int    `json:"index" yaml:"index"`

	// Label is one of the closed label set ("medical", "non-medical").
	Label string `json:"label" yaml:"label"`

	// Confidence is the softmax-normalized score of the winning label,
	// in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ItemResult is one line of the run report: either a classification
// or a skip, in the source's original yield order.
type ItemResult struct {
	Index      int     `json:"index" yaml:"index"`
	Origin     string  `json:"origin" yaml:"origin"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Skipped    bool    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	SkipReason string  `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
}

// Report aggregates one pipeline run.
// Invariant: Classified + Skipped == Total == len(Items).
type Report struct {
	Items      []ItemResult  `json:"items" yaml:"items"`
	Total      int           `json:"total" yaml:"total"`
	Classified int           `json:"classified" yaml:"classified"`
	Skipped    int           `json:"skipped" yaml:"skipped"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`

	// LabelCounts maps each label to how many items won it.
	LabelCounts map[string]int `json:"label_counts" yaml:"label_counts"`
}
