// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/pdiddy/medscan/pkg/types"
)

// PDFSource yields every raster image embedded in a local PDF, in document
// order: ascending page number, then ascending object number within a page.
// A PDF with zero embedded images is an empty sequence, not an error.
type PDFSource struct {
	Path string

	// Logger receives per-item diagnostics. Nil means no logging.
	Logger *zap.Logger
}

func (s *PDFSource) Describe() string { return s.Path }

func (s *PDFSource) Images(_ context.Context) ([]types.RawImage, []types.SkipNote, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %v: %w", s.Path, err, types.ErrSourceUnreachable)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(f, nil, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v: %w", s.Path, err, types.ErrSourceUnreachable)
	}

	var raws []types.RawImage
	var skips []types.SkipNote
	for i, img := range orderImages(pages) {
		origin := fmt.Sprintf("%s#page%d.%s", s.Path, img.PageNr, img.Name)
		data, err := io.ReadAll(img)
		if err != nil {
			log.Warn("embedded image unreadable",
				zap.String("origin", origin),
				zap.Error(err))
			skips = append(skips, types.SkipNote{
				Origin: origin,
				Index:  i,
				Reason: fmt.Sprintf("extracting embedded image: %v", err),
			})
			continue
		}
		raws = append(raws, types.RawImage{
			Origin: origin,
			Index:  i,
			Data:   data,
			Format: img.FileType,
		})
	}

	log.Debug("pdf source scanned",
		zap.String("path", s.Path),
		zap.Int("images", len(raws)),
		zap.Int("skips", len(skips)))
	return raws, skips, nil
}

// orderImages flattens pdfcpu's per-page image maps into document order.
// The outer slice is already page-ordered; within a page, images are
// keyed by PDF object number, which follows the writer's emission order.
func orderImages(pages []map[int]model.Image) []model.Image {
	var out []model.Image
	for _, page := range pages {
		objNrs := make([]int, 0, len(page))
		for nr := range page {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			out = append(out, page[nr])
		}
	}
	return out
}
