package noteslatex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Batch defaults.
const (
	// DefaultOutputDir is where extracted results are written.
	DefaultOutputDir = "latex_output"

	// DefaultDelay is the politeness pause between consecutive uploads.
	DefaultDelay = 3 * time.Second
)

// BatchConfig configures one batch run.
type BatchConfig struct {
	// OutputDir receives one <label>.txt per successful item.
	// Defaults to [DefaultOutputDir].
	OutputDir string

	// Delay is the pause inserted after each non-final item, a fixed
	// politeness throttle with no backoff.
	Delay time.Duration
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Saved  int
	Failed int
}

// Total returns the number of items processed.
func (r BatchResult) Total() int {
	return r.Saved + r.Failed
}

// HasFailures reports whether any item failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RunBatch pushes every item through s in order, printing per-item progress
// to w and writing one <label>.txt per success into cfg.OutputDir.
//
// Failures are isolated per item: a result timeout or any other error is
// printed and the loop moves on to the next item. Items are never retried,
// reordered, or run in parallel. Same-label items overwrite each other's
// output silently.
func RunBatch(ctx context.Context, s Submitter, items []Item, cfg BatchConfig, w io.Writer) BatchResult {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	var result BatchResult
	for i, item := range items {
		fmt.Fprintf(w, "\n[%d/%d] Processing: %s\n", i+1, len(items), item.Label)

		if err := processItem(ctx, s, item, cfg.OutputDir, w); err != nil {
			if errors.Is(err, ErrResultTimeout) {
				fmt.Fprintln(w, "  ✗ Timeout waiting for result")
			} else {
				fmt.Fprintf(w, "  ✗ Error: %v\n", err)
			}
			result.Failed++
		} else {
			result.Saved++
		}

		if i < len(items)-1 && cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}
	}
	return result
}

// processItem submits one image and saves the extracted document body.
func processItem(ctx context.Context, s Submitter, item Item, outDir string, w io.Writer) error {
	res, err := s.Submit(ctx, item.Path)
	if err != nil {
		return err
	}

	content := res.Body()
	fmt.Fprintf(w, "  ✓ Got %d characters\n", len(content))

	outPath := filepath.Join(outDir, item.Label+".txt")
	if err := writeOutput(outPath, content); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ Saved to %s\n", outPath)
	return nil
}

// writeOutput writes content to path, creating the directory if absent and
// overwriting silently.
func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("noteslatex: creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("noteslatex: writing %s: %w", path, err)
	}
	return nil
}
