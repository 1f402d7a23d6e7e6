// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medscan/pkg/types"
)

func TestIsDirectImageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"png", "https://example.com/a.png", true},
		{"jpg uppercase", "https://example.com/A.JPG", true},
		{"jpeg with query", "https://example.com/scan.jpeg?w=640", true},
		{"webp", "https://example.com/pic.webp", true},
		{"tiff", "https://example.com/pic.tiff", true},
		{"plain page", "https://example.com/articles/radiology", false},
		{"extension in query only", "https://example.com/view?f=a.png", false},
		{"whitespace trimmed", "  https://example.com/a.gif  ", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDirectImageURL(tt.url))
		})
	}
}

func TestExtOf(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://example.com/a.png?x=1", "png"},
		{"https://example.com/a.jpg", "jpeg"},
		{"photo.JPEG", "jpeg"},
		{"https://example.com/page", ""},
		{"archive.tar.gz", "gz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extOf(tt.ref), "extOf(%q)", tt.ref)
	}
}

func TestFileSource_YieldsOneImage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(p, []byte("png-bytes"), 0o644))

	src := &FileSource{Path: p}
	raws, skips, err := src.Images(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skips)
	require.Len(t, raws, 1)
	assert.Equal(t, p, raws[0].Origin)
	assert.Equal(t, 0, raws[0].Index)
	assert.Equal(t, "png", raws[0].Format)
	assert.Equal(t, []byte("png-bytes"), raws[0].Data)
}

func TestFileSource_MissingFileIsSourceUnreachable(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nope.jpg")}
	_, _, err := src.Images(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSourceUnreachable)
}
