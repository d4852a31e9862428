// Package raster renders PDF pages to PNG images using external tools.
// It prefers pdftoppm (poppler) and falls back to mutool (mupdf); the
// capability is probed once via [Detect] and injected where needed, so an
// unavailable tool is an error value rather than a mid-run crash.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	binPdftoppm = "pdftoppm"
	binMutool   = "mutool"

	// renderDPI is the rasterization resolution.
	renderDPI = "200"

	// pagePrefix names the rendered files: page-1.png, page-2.png, ...
	pagePrefix = "page"
)

// Engine renders PDF pages to images via an external tool.
type Engine interface {
	// Name returns the tool name ("pdftoppm" or "mutool").
	Name() string

	// Rasterize renders every page of pdfPath to a PNG in destDir and
	// returns the image paths in increasing page order.
	Rasterize(ctx context.Context, pdfPath, destDir string) ([]string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := lastLine(out); msg != "" {
			return fmt.Errorf("%w (%s)", err, msg)
		}
		return err
	}
	return nil
}

// engine implements Engine for one external binary. pdftoppm and mutool
// share the logic; they differ in binary name and argument layout.
type engine struct {
	bin  string
	args func(pdfPath, outPrefix string) []string
	exec executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) available() bool {
	_, err := e.exec.LookPath(e.bin)
	return err == nil
}

// Rasterize renders every page of pdfPath into destDir.
func (e *engine) Rasterize(ctx context.Context, pdfPath, destDir string) ([]string, error) {
	prefix := filepath.Join(destDir, pagePrefix)
	if err := e.exec.Run(ctx, e.bin, e.args(pdfPath, prefix)...); err != nil {
		return nil, fmt.Errorf("raster: %s: %w", e.bin, err)
	}

	pages, err := collectPages(destDir)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("raster: %s produced no page images", e.bin)
	}
	return pages, nil
}

func newPdftoppmEngine(exec executor) *engine {
	return &engine{
		bin: binPdftoppm,
		args: func(pdfPath, outPrefix string) []string {
			return []string{"-png", "-r", renderDPI, pdfPath, outPrefix}
		},
		exec: exec,
	}
}

func newMutoolEngine(exec executor) *engine {
	return &engine{
		bin: binMutool,
		args: func(pdfPath, outPrefix string) []string {
			return []string{"draw", "-r", renderDPI, "-o", outPrefix + "-%d.png", pdfPath}
		},
		exec: exec,
	}
}

var defaultExec = &osExecutor{}

// Detect tries pdftoppm first, falls back to mutool. It returns an error
// naming both tools when neither is installed.
func Detect() (Engine, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Engine, error) {
	pdftoppm := newPdftoppmEngine(exec)
	if pdftoppm.available() {
		return pdftoppm, nil
	}

	mutool := newMutoolEngine(exec)
	if mutool.available() {
		return mutool, nil
	}

	return nil, fmt.Errorf(
		"raster: PDF support requires %s (poppler-utils) or %s (mupdf-tools) on PATH",
		binPdftoppm, binMutool,
	)
}

// pageNumber matches the file names both engines produce for a page.
var pageNumber = regexp.MustCompile(`^` + pagePrefix + `-(\d+)\.png$`)

// collectPages returns the rendered page images in destDir sorted by page
// number. pdftoppm zero-pads the number and mutool does not, so lexical
// order is not reliable.
func collectPages(destDir string) ([]string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, err
	}

	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, ent := range entries {
		m := pageNumber.FindStringSubmatch(ent.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(destDir, ent.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// lastLine returns the last non-empty line of command output, for error
// context.
func lastLine(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
