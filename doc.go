// Package noteslatex converts photographed or scanned handwritten notes to
// LaTeX by driving the notestolatex.com web converter through headless Chrome
// (Chrome DevTools Protocol).
//
// # Basic Usage
//
// For a single image use the package-level helper:
//
//	res, err := noteslatex.SubmitFile(ctx, "notes.png")
//
// For several files create an [Uploader], which reuses the browser process
// across submissions:
//
//	u, err := noteslatex.NewUploader()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer u.Close()
//
//	res, err := u.Submit(ctx, "page1.png")
//	res, err  = u.Submit(ctx, "page2.jpg")
//
// A [Result] gives access to the recognized LaTeX:
//
//	res.Text()                        // full text of the result region
//	res.Body()                        // document body, markers stripped
//	res.HTML()                        // raw result-region markup
//	res.WriteToFile("out.txt", 0o644) // write the body to disk
//
// # Batch Pipeline
//
// [ExpandInputs] turns a mixed list of image and PDF paths into per-page work
// items, and [RunBatch] submits them sequentially, writing one .txt file per
// item:
//
//	items, err := noteslatex.ExpandInputs(ctx, os.Args[1:], nil, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	noteslatex.RunBatch(ctx, u, items, noteslatex.BatchConfig{}, os.Stdout)
//
// A failed item is reported and skipped; the batch carries on with the rest.
//
// # PDF Inputs
//
// PDFs are rasterized to one PNG per page before upload. Rasterizing requires
// pdftoppm (poppler-utils) or mutool (mupdf-tools) in PATH; the first PDF in a
// batch triggers the probe, and image-only batches never need either tool.
//
// # Browser Lifecycle
//
// [NewUploader] launches Chrome once; every [Uploader.Submit] opens a fresh
// tab against the converter page and closes it when done. The site is driven
// visibly by default so conversions can be watched; pass [WithHeadless] for
// unattended runs. Chrome or Chromium must be available in PATH, or use
// [WithAutoDownload]:
//
//	u, err := noteslatex.NewUploader(noteslatex.WithAutoDownload())
package noteslatex
