// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate benchmarks the classifier against a labeled directory:
// one subdirectory per label, each holding image files of that label.
package evaluate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdiddy/medscan/internal/classify"
	"github.com/pdiddy/medscan/internal/normalize"
	"github.com/pdiddy/medscan/pkg/types"
)

// Outcome aggregates one evaluation run.
type Outcome struct {
	Total     int
	Correct   int
	Undecoded int

	// PerLabel maps label name to (total, correct) for that label.
	PerLabel map[string][2]int

	// Latencies holds one classification duration per decoded image.
	Latencies []time.Duration
}

// Accuracy is correct/total over decoded images, or 0 when nothing ran.
func (o *Outcome) Accuracy() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Correct) / float64(o.Total)
}

// MeanLatency is the average per-image classification time.
func (o *Outcome) MeanLatency() time.Duration {
	if len(o.Latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range o.Latencies {
		sum += l
	}
	return sum / time.Duration(len(o.Latencies))
}

// Run walks dir's label subdirectories, classifies every decodable image,
// and writes a summary to w. The set of subdirectory names must match the
// classifier's label set; unknown subdirectories are an error so a typo
// cannot silently zero a label's score.
func Run(ctx context.Context, dir string, cl *classify.Classifier, side int, w io.Writer) (*Outcome, error) {
	known := make(map[string]bool)
	for _, l := range cl.Labels() {
		known[l.Name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading evaluation directory %s: %w", dir, err)
	}

	outcome := &Outcome{PerLabel: make(map[string][2]int)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		if !known[label] {
			return nil, fmt.Errorf("directory %q does not match any label", label)
		}
		if err := evalLabel(ctx, filepath.Join(dir, label), label, cl, side, outcome, w); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(w, "\naccuracy=%.4f (%d/%d)", outcome.Accuracy(), outcome.Correct, outcome.Total)
	if outcome.Undecoded > 0 {
		fmt.Fprintf(w, " undecoded=%d", outcome.Undecoded)
	}
	fmt.Fprintln(w)

	if mean := outcome.MeanLatency(); mean > 0 {
		fmt.Fprintf(w, "latency mean=%.3fs throughput=%.2f images/s\n",
			mean.Seconds(), 1/mean.Seconds())
	}

	labels := make([]string, 0, len(outcome.PerLabel))
	for l := range outcome.PerLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		counts := outcome.PerLabel[l]
		fmt.Fprintf(w, "  %s: %d/%d\n", l, counts[1], counts[0])
	}
	return outcome, nil
}

func evalLabel(ctx context.Context, dir, label string, cl *classify.Classifier, side int, outcome *Outcome, w io.Writer) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "%s\tunreadable: %v\n", path, err)
			outcome.Undecoded++
			continue
		}

		norm, err := normalize.Normalize(data, side)
		if err != nil {
			if types.IsSkip(err) {
				fmt.Fprintf(w, "%s\tundecoded: %v\n", path, err)
				outcome.Undecoded++
				continue
			}
			return err
		}

		start := time.Now()
		got, conf, err := cl.Classify(norm)
		if err != nil {
			fmt.Fprintf(w, "%s\tclassify failed: %v\n", path, err)
			outcome.Undecoded++
			continue
		}
		outcome.Latencies = append(outcome.Latencies, time.Since(start))

		outcome.Total++
		counts := outcome.PerLabel[label]
		counts[0]++
		if got == label {
			outcome.Correct++
			counts[1]++
		}
		outcome.PerLabel[label] = counts

		fmt.Fprintf(w, "%s\twant=%s got=%s conf=%.4f\n", path, label, got, conf)
	}
	return nil
}
