// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/medscan/internal/httputil"
	"github.com/pdiddy/medscan/pkg/types"
)

// imageExtensions are the suffixes treated as direct image URLs,
// matching the formats the normalizer can decode.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}

// IsDirectImageURL reports whether raw looks like a link to an image file
// rather than a page, judged by the URL path's extension.
func IsDirectImageURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// ImageURLSource performs exactly one fetch and yields a single RawImage.
// Any fetch failure is fatal: there is no partial result for a one-image
// source.
type ImageURLSource struct {
	URL       string
	Client    *http.Client
	UserAgent string
}

func (s *ImageURLSource) Describe() string { return s.URL }

func (s *ImageURLSource) Images(ctx context.Context) ([]types.RawImage, []types.SkipNote, error) {
	data, err := httputil.Fetch(ctx, s.Client, s.URL, s.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	return []types.RawImage{{
		Origin: s.URL,
		Index:  0,
		Data:   data,
		Format: extOf(s.URL),
	}}, nil, nil
}

// PageURLSource fetches a webpage, scans its markup for image references,
// and yields one RawImage per reference in document order. The first
// occurrence of a resolved URL wins; later duplicates are dropped. A fetch
// failure on an individual reference is a per-item skip, not a run failure.
type PageURLSource struct {
	URL       string
	Client    *http.Client
	UserAgent string

	// Logger receives per-reference diagnostics. Nil means no logging.
	Logger *zap.Logger
}

func (s *PageURLSource) Describe() string { return s.URL }

func (s *PageURLSource) Images(ctx context.Context) ([]types.RawImage, []types.SkipNote, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	body, err := httputil.Fetch(ctx, s.Client, s.URL, s.UserAgent)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %v: %w", s.URL, err, types.ErrSourceUnreachable)
	}

	base, err := url.Parse(s.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing page URL %s: %v: %w", s.URL, err, types.ErrSourceUnreachable)
	}

	refs := collectImageRefs(doc, base)
	log.Debug("page scanned",
		zap.String("url", s.URL),
		zap.Int("references", len(refs)))

	var raws []types.RawImage
	var skips []types.SkipNote
	for i, ref := range refs {
		data, err := httputil.Fetch(ctx, s.Client, ref, s.UserAgent)
		if err != nil {
			log.Warn("image reference unreachable",
				zap.String("url", ref),
				zap.Error(err))
			skips = append(skips, types.SkipNote{
				Origin: ref,
				Index:  i,
				Reason: fmt.Sprintf("fetching image reference: %v", err),
			})
			continue
		}
		raws = append(raws, types.RawImage{
			Origin: ref,
			Index:  i,
			Data:   data,
			Format: extOf(ref),
		})
	}
	return raws, skips, nil
}

// collectImageRefs returns the page's <img> references resolved against
// base, in document order, first occurrence winning. Images referenced
// only from inline CSS backgrounds are not discovered.
func collectImageRefs(doc *goquery.Document, base *url.URL) []string {
	var refs []string
	seen := make(map[string]bool)

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			// Lazy-loading pages put the real reference in data-src.
			src, ok = sel.Attr("data-src")
			if !ok || strings.TrimSpace(src) == "" {
				return
			}
		}
		src = strings.TrimSpace(src)

		// Inline data URIs are not fetchable references.
		if strings.HasPrefix(src, "data:") {
			return
		}

		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		refs = append(refs, resolved)
	})
	return refs
}

// extOf sniffs a format tag from a URL or file path extension.
func extOf(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(ref), "."))
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext
}
