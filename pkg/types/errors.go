// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Failure taxonomy for a pipeline run. The first two are fatal: they abort
// the run with a nonzero exit before or instead of processing items. The
// rest are per-item: the orchestrator records a skip and continues.
var (
	// ErrSourceUnreachable means the input source itself could not be
	// read or fetched (missing file, unreadable PDF, network failure,
	// HTTP error status on the source).
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrModelUnavailable means the model weights, tokenizer, or
	// runtime could not be loaded. Raised before any item is processed.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrCorruptData means an individual image's bytes failed to decode
	// in a recognized container.
	ErrCorruptData = errors.New("corrupt image data")

	// ErrUnsupportedFormat means an individual image's container format
	// is not one the normalizer can decode.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrClassifyFailure means the classifier errored on one
	// otherwise-valid normalized image.
	ErrClassifyFailure = errors.New("classification failed")
)

// IsFatal reports whether err aborts the whole run rather than a single item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSourceUnreachable) || errors.Is(err, ErrModelUnavailable)
}

// IsSkip reports whether err is a recoverable per-item failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrCorruptData) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrClassifyFailure)
}
