// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medscan/internal/classify"
	"github.com/pdiddy/medscan/pkg/types"
)

// constEncoder aligns every image with the first prompt it saw, so every
// image classifies as the first label.
type constEncoder struct{}

func (constEncoder) EncodeImage(*types.NormalizedImage) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (constEncoder) EncodeText(prompt string) ([]float32, error) {
	if prompt == "medical thing" {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (constEncoder) Close() error { return nil }

func newClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	cl, err := classify.New(constEncoder{}, classify.LabelSet{Labels: []classify.Label{
		{Name: "medical", Prompt: "medical thing"},
		{Name: "non-medical", Prompt: "other thing"},
	}})
	require.NoError(t, err)
	return cl
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRun_CountsAccuracyPerLabel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "medical"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "non-medical"), 0o755))
	writePNG(t, filepath.Join(dir, "medical", "a.png"))
	writePNG(t, filepath.Join(dir, "medical", "b.png"))
	writePNG(t, filepath.Join(dir, "non-medical", "c.png"))

	var out bytes.Buffer
	outcome, err := Run(context.Background(), dir, newClassifier(t), 8, &out)
	require.NoError(t, err)

	// constEncoder labels everything "medical": 2 of 3 correct.
	assert.Equal(t, 3, outcome.Total)
	assert.Equal(t, 2, outcome.Correct)
	assert.InDelta(t, 2.0/3.0, outcome.Accuracy(), 1e-12)
	assert.Equal(t, [2]int{2, 2}, outcome.PerLabel["medical"])
	assert.Equal(t, [2]int{1, 0}, outcome.PerLabel["non-medical"])
	assert.Len(t, outcome.Latencies, 3)
	assert.Contains(t, out.String(), "accuracy=0.6667 (2/3)")
}

func TestRun_UndecodableFilesAreCountedNotFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "medical"), 0o755))
	writePNG(t, filepath.Join(dir, "medical", "ok.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "medical", "junk.txt"), []byte("not an image"), 0o644))

	var out bytes.Buffer
	outcome, err := Run(context.Background(), dir, newClassifier(t), 8, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Total)
	assert.Equal(t, 1, outcome.Undecoded)
	assert.Contains(t, out.String(), "undecoded=1")
}

func TestRun_UnknownLabelDirectoryIsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mystery"), 0o755))

	var out bytes.Buffer
	_, err := Run(context.Background(), dir, newClassifier(t), 8, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestRun_MissingDirectoryIsError(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "absent"), newClassifier(t), 8, &out)
	require.Error(t, err)
}

func TestOutcome_EmptyAccuracyIsZero(t *testing.T) {
	o := &Outcome{PerLabel: map[string][2]int{}}
	assert.Equal(t, 0.0, o.Accuracy())
	assert.Equal(t, time.Duration(0), o.MeanLatency())
}
