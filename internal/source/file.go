// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/medscan/pkg/types"
)

// FileSource yields a single local image file.
type FileSource struct {
	Path string
}

func (s *FileSource) Describe() string { return s.Path }

func (s *FileSource) Images(_ context.Context) ([]types.RawImage, []types.SkipNote, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v: %w", s.Path, err, types.ErrSourceUnreachable)
	}
	return []types.RawImage{{
		Origin: s.Path,
		Index:  0,
		Data:   data,
		Format: extOf(s.Path),
	}}, nil, nil
}
