// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences one classification run: source extraction,
// per-item normalization and classification, and the console report.
// Items are processed strictly in the source's yield order, one at a
// time; nothing is retained across items except the result list.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/medscan/internal/classify"
	"github.com/pdiddy/medscan/internal/normalize"
	"github.com/pdiddy/medscan/internal/source"
	"github.com/pdiddy/medscan/pkg/types"
)

// Config holds the per-run knobs.
type Config struct {
	// ImageSide is the normalizer's target square dimension; must match
	// what the classifier's model expects.
	ImageSide int

	// Threshold flags report lines whose confidence falls below it.
	// Display only; the winning label is unchanged.
	Threshold float64
}

// Run executes one pipeline run against src, writing per-item lines and a
// summary to w, and returns the aggregated report.
//
// A source-level failure returns an error wrapping ErrSourceUnreachable
// and no report. Per-item failures (extraction, decode, classify) become
// skip entries; classified + skipped always equals the number of items
// the source discovered.
func Run(ctx context.Context, src source.Source, cl *classify.Classifier, cfg Config, w io.Writer) (*types.Report, error) {
	start := time.Now()

	raws, skips, err := src.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", src.Describe(), err)
	}

	report := &types.Report{
		LabelCounts: make(map[string]int),
	}

	for _, s := range skips {
		report.Items = append(report.Items, types.ItemResult{
			Index:      s.Index,
			Origin:     s.Origin,
			Skipped:    true,
			SkipReason: s.Reason,
		})
	}

	for _, raw := range raws {
		item := processItem(raw, cl, cfg.ImageSide)
		report.Items = append(report.Items, item)
	}

	// Restore the source's yield order: skips and successes were
	// collected separately but indices interleave.
	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Index < report.Items[j].Index
	})

	for _, item := range report.Items {
		report.Total++
		if item.Skipped {
			report.Skipped++
			fmt.Fprintf(w, "%d\t%s\tskipped: %s\n", item.Index, item.Origin, item.SkipReason)
			continue
		}
		report.Classified++
		report.LabelCounts[item.Label]++
		flag := ""
		if item.Confidence < cfg.Threshold {
			flag = " (low-confidence)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f%s\n", item.Index, item.Origin, item.Label, item.Confidence, flag)
	}

	report.Elapsed = time.Since(start)

	fmt.Fprintf(w, "\ntotal=%d classified=%d skipped=%d elapsed=%.2fs\n",
		report.Total, report.Classified, report.Skipped, report.Elapsed.Seconds())
	for _, l := range cl.Labels() {
		fmt.Fprintf(w, "  %s: %d\n", l.Name, report.LabelCounts[l.Name])
	}
	return report, nil
}

// processItem normalizes and classifies one raw image. Failures come back
// as a skip entry, never as a run error.
func processItem(raw types.RawImage, cl *classify.Classifier, side int) types.ItemResult {
	norm, err := normalize.Normalize(raw.Data, side)
	if err != nil {
		return types.ItemResult{
			Index:      raw.Index,
			Origin:     raw.Origin,
			Skipped:    true,
			SkipReason: err.Error(),
		}
	}

	label, conf, err := cl.Classify(norm)
	if err != nil {
		return types.ItemResult{
			Index:      raw.Index,
			Origin:     raw.Origin,
			Skipped:    true,
			SkipReason: err.Error(),
		}
	}

	return types.ItemResult{
		Index:      raw.Index,
		Origin:     raw.Origin,
		Label:      label,
		Confidence: conf,
	}
}
