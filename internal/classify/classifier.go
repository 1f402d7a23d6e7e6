// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns zero-shot labels to normalized images with a
// dual-encoder vision-language model: the image embedding is scored
// against one text embedding per candidate label, and the softmax of the
// scaled cosine similarities picks the winner.
// See docs/ARCHITECTURE.md § Classifier.
package classify

import (
	"fmt"
	"math"

	"github.com/pdiddy/medscan/pkg/types"
)

// Encoder embeds images and texts into the model's shared vector space.
// CLIPEncoder is the production implementation; tests substitute fakes.
type Encoder interface {
	EncodeImage(img *types.NormalizedImage) ([]float32, error)
	EncodeText(prompt string) ([]float32, error)
	Close() error
}

// logitScale is CLIP's fixed learned temperature (exp of the trained
// logit_scale parameter, ~100 for the reference checkpoints).
const logitScale = 100.0

// Classifier scores images against a fixed label set. The label prompt
// embeddings are computed once at construction; Classify is then a pure
// function of its input.
type Classifier struct {
	enc     Encoder
	labels  []Label
	prompts [][]float64
}

// New embeds every label prompt with enc and returns a ready classifier.
// An encoder failure here means the model cannot serve at all, so it
// wraps types.ErrModelUnavailable.
func New(enc Encoder, set LabelSet) (*Classifier, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid label set: %v: %w", err, types.ErrModelUnavailable)
	}

	prompts := make([][]float64, len(set.Labels))
	for i, l := range set.Labels {
		vec, err := enc.EncodeText(l.Prompt)
		if err != nil {
			return nil, fmt.Errorf("embedding prompt for %q: %v: %w", l.Name, err, types.ErrModelUnavailable)
		}
		prompts[i] = unit(vec)
	}

	return &Classifier{enc: enc, labels: set.Labels, prompts: prompts}, nil
}

// Labels returns the label set in score order.
func (c *Classifier) Labels() []Label { return c.labels }

// Classify embeds img, scores it against every label prompt, and returns
// the winning label with its softmax-normalized confidence. Ties break
// toward the earlier label, so the result is deterministic.
func (c *Classifier) Classify(img *types.NormalizedImage) (string, float64, error) {
	vec, err := c.enc.EncodeImage(img)
	if err != nil {
		return "", 0, fmt.Errorf("embedding image: %v: %w", err, types.ErrClassifyFailure)
	}
	image := unit(vec)

	logits := make([]float64, len(c.prompts))
	for i, p := range c.prompts {
		logits[i] = logitScale * dot(image, p)
	}
	probs := softmax(logits)

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return c.labels[best].Name, probs[best], nil
}

// Close releases the underlying encoder.
func (c *Classifier) Close() error { return c.enc.Close() }

// unit converts to float64 and scales to unit length. A zero vector is
// returned unscaled so the cosine degrades to zero instead of NaN.
func unit(v []float32) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = float64(x)
		sum += out[i] * out[i]
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// softmax with max subtraction for numeric stability.
func softmax(logits []float64) []float64 {
	max := math.Inf(-1)
	for _, l := range logits {
		if l > max {
			max = l
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
