package noteslatex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/porticus-lab/go-notes-latex/internal/raster"
)

// Item is one unit of work for the pipeline: an image on disk and the
// label naming its output file.
type Item struct {
	Path  string
	Label string
}

// Rasterizer renders every page of a PDF to an image file in destDir and
// returns the image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, destDir string) ([]string, error)
}

// RasterizerProvider resolves the rasterization capability. It is invoked
// at most once, at the first PDF encountered; a resolution failure aborts
// the whole run.
type RasterizerProvider func() (Rasterizer, error)

// defaultRasterizer probes the external tools installed on this machine.
func defaultRasterizer() (Rasterizer, error) {
	return raster.Detect()
}

// pageCount reports the number of pages in a PDF, validating the file in
// the process. Package variable so tests can substitute a stub.
var pageCount = func(pdfPath string) (int, error) {
	return pdfapi.PageCountFile(pdfPath)
}

// ExpandInputs turns raw CLI paths into the flat ordered work list.
//
// Missing paths are warned on w and skipped. A path ending in .pdf is
// rasterized one image per page into a fresh directory under the system
// temp location (left behind so the operator can inspect the pages),
// contributing one item per page labeled {stem}_page{n}, 1-indexed. Every
// other path passes through as a single item labeled by its file stem.
// Order is preserved: pages of one PDF stay contiguous and increasing, and
// inputs keep their argument order.
//
// The rasterizer is resolved through provider at the first PDF (nil means
// [raster.Detect]); failure to resolve is the only fatal case. A PDF that
// fails validation or rasterization is warned and skipped like a missing
// file.
func ExpandInputs(ctx context.Context, paths []string, provider RasterizerProvider, w io.Writer) ([]Item, error) {
	if provider == nil {
		provider = defaultRasterizer
	}

	var (
		items []Item
		ras   Rasterizer
	)
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			fmt.Fprintf(w, "Warning: %s not found, skipping\n", p)
			continue
		}

		if !strings.EqualFold(filepath.Ext(p), ".pdf") {
			items = append(items, Item{Path: p, Label: stem(p)})
			continue
		}

		if ras == nil {
			r, err := provider()
			if err != nil {
				return nil, err
			}
			ras = r
		}
		pageItems, err := expandPDF(ctx, p, ras, w)
		if err != nil {
			fmt.Fprintf(w, "Warning: %s: %v, skipping\n", p, err)
			continue
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

// expandPDF rasterizes one PDF and returns its per-page items.
func expandPDF(ctx context.Context, pdfPath string, ras Rasterizer, w io.Writer) ([]Item, error) {
	fmt.Fprintf(w, "Converting PDF: %s\n", filepath.Base(pdfPath))

	want, err := pageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	destDir, err := os.MkdirTemp("", "noteslatex-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	pages, err := ras.Rasterize(ctx, pdfPath, destDir)
	if err != nil {
		return nil, fmt.Errorf("rasterizing: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterizing produced no pages")
	}
	if len(pages) != want {
		fmt.Fprintf(w, "  Warning: expected %d page(s), rasterizer produced %d\n", want, len(pages))
	}

	base := stem(pdfPath)
	items := make([]Item, 0, len(pages))
	for i, img := range pages {
		fmt.Fprintf(w, "  Extracted page %d → %s\n", i+1, filepath.Base(img))
		items = append(items, Item{Path: img, Label: fmt.Sprintf("%s_page%d", base, i+1)})
	}
	return items, nil
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
