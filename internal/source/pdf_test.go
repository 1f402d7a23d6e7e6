// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medscan/pkg/types"
)

func fakeImage(pageNr, objNr int, name string) model.Image {
	return model.Image{
		Reader:   bytes.NewReader([]byte(name)),
		Name:     name,
		PageNr:   pageNr,
		ObjNr:    objNr,
		FileType: "png",
	}
}

func TestOrderImages_PageThenObjectNumber(t *testing.T) {
	pages := []map[int]model.Image{
		{
			12: fakeImage(1, 12, "Im2"),
			7:  fakeImage(1, 7, "Im1"),
		},
		{
			3: fakeImage(2, 3, "Im3"),
		},
	}

	ordered := orderImages(pages)
	require.Len(t, ordered, 3)
	assert.Equal(t, "Im1", ordered[0].Name)
	assert.Equal(t, "Im2", ordered[1].Name)
	assert.Equal(t, "Im3", ordered[2].Name)
}

func TestOrderImages_Empty(t *testing.T) {
	assert.Empty(t, orderImages(nil))
	assert.Empty(t, orderImages([]map[int]model.Image{{}, {}}))
}

func TestPDFSource_MissingFileIsSourceUnreachable(t *testing.T) {
	src := &PDFSource{Path: "testdata/does-not-exist.pdf"}
	raws, skips, err := src.Images(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSourceUnreachable)
	assert.Empty(t, raws)
	assert.Empty(t, skips)
}

func TestPDFSource_Describe(t *testing.T) {
	src := &PDFSource{Path: "scans/report.pdf"}
	assert.Equal(t, "scans/report.pdf", src.Describe())
}
