package noteslatex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// stubSubmitter satisfies Submitter without a browser.
type stubSubmitter struct {
	texts    map[string]string // path -> scraped result text
	fallback string            // result text for paths not in texts
	errs     map[string]error  // path -> submission failure
	calls    []string
}

func (s *stubSubmitter) Submit(ctx context.Context, imagePath string) (*Result, error) {
	s.calls = append(s.calls, imagePath)
	if err := s.errs[imagePath]; err != nil {
		return nil, err
	}
	if text, ok := s.texts[imagePath]; ok {
		return &Result{text: text}, nil
	}
	return &Result{text: s.fallback}, nil
}

func TestRunBatch_SavesExtractedBodies(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "latex_output")
	sub := &stubSubmitter{texts: map[string]string{
		"a.png": `\documentclass{article}\begin{document}x^2\end{document}`,
		"b.png": "plain result without markers",
	}}
	items := []Item{{Path: "a.png", Label: "a"}, {Path: "b.png", Label: "b"}}

	var out bytes.Buffer
	res := RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir}, &out)

	if res.Saved != 2 || res.Failed != 0 {
		t.Fatalf("got %+v, want 2 saved, 0 failed", res)
	}
	if res.HasFailures() {
		t.Error("HasFailures() = true for a clean run")
	}

	got, err := os.ReadFile(filepath.Join(outDir, "a.txt"))
	if err != nil {
		t.Fatalf("reading a.txt: %v", err)
	}
	if string(got) != "x^2" {
		t.Errorf("a.txt = %q, want extracted body %q", got, "x^2")
	}

	got, err = os.ReadFile(filepath.Join(outDir, "b.txt"))
	if err != nil {
		t.Fatalf("reading b.txt: %v", err)
	}
	if string(got) != "plain result without markers" {
		t.Errorf("b.txt = %q, want full trimmed text", got)
	}
}

func TestRunBatch_ProgressLines(t *testing.T) {
	outDir := t.TempDir()
	body := "E = mc^2"
	sub := &stubSubmitter{texts: map[string]string{
		"n.png": `\begin{document}` + body + `\end{document}`,
	}}

	var out bytes.Buffer
	RunBatch(context.Background(), sub, []Item{{Path: "n.png", Label: "notes"}},
		BatchConfig{OutputDir: outDir}, &out)

	text := out.String()
	for _, want := range []string{
		"[1/1] Processing: notes",
		fmt.Sprintf("  ✓ Got %d characters", len(body)),
		"  ✓ Saved to " + filepath.Join(outDir, "notes.txt"),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q, got:\n%s", want, text)
		}
	}
}

func TestRunBatch_TimeoutIsolated(t *testing.T) {
	outDir := t.TempDir()
	sub := &stubSubmitter{
		texts: map[string]string{"ok.png": "result"},
		errs:  map[string]error{"slow.png": ErrResultTimeout},
	}
	items := []Item{{Path: "slow.png", Label: "slow"}, {Path: "ok.png", Label: "ok"}}

	var out bytes.Buffer
	res := RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir}, &out)

	if res.Saved != 1 || res.Failed != 1 {
		t.Fatalf("got %+v, want 1 saved, 1 failed", res)
	}
	if !strings.Contains(out.String(), "  ✗ Timeout waiting for result") {
		t.Errorf("missing timeout notice, got:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "slow.txt")); !os.IsNotExist(err) {
		t.Error("timeout item must not produce an output file")
	}
	if len(sub.calls) != 2 {
		t.Errorf("processed %d items, want 2 (run continues after timeout)", len(sub.calls))
	}
	if _, err := os.Stat(filepath.Join(outDir, "ok.txt")); err != nil {
		t.Errorf("second item not saved: %v", err)
	}
}

func TestRunBatch_ErrorIsolated(t *testing.T) {
	outDir := t.TempDir()
	sub := &stubSubmitter{
		texts: map[string]string{"b.png": "fine"},
		errs:  map[string]error{"a.png": errors.New("element not found")},
	}
	items := []Item{{Path: "a.png", Label: "a"}, {Path: "b.png", Label: "b"}}

	var out bytes.Buffer
	res := RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir}, &out)

	if res.Failed != 1 || res.Saved != 1 {
		t.Fatalf("got %+v, want 1 failed, 1 saved", res)
	}
	if !strings.Contains(out.String(), "  ✗ Error: element not found") {
		t.Errorf("missing error line, got:\n%s", out.String())
	}
}

func TestRunBatch_LabelCollisionOverwrites(t *testing.T) {
	outDir := t.TempDir()
	sub := &stubSubmitter{texts: map[string]string{
		"one.png": "first content",
		"two.png": "second content",
	}}
	items := []Item{{Path: "one.png", Label: "same"}, {Path: "two.png", Label: "same"}}

	var out bytes.Buffer
	RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir}, &out)

	got, err := os.ReadFile(filepath.Join(outDir, "same.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second content" {
		t.Errorf("same.txt = %q, want the later item's content", got)
	}
}

func TestRunBatch_DelayBetweenItems(t *testing.T) {
	outDir := t.TempDir()
	sub := &stubSubmitter{texts: map[string]string{"a.png": "a", "b.png": "b"}}
	items := []Item{{Path: "a.png", Label: "a"}, {Path: "b.png", Label: "b"}}

	start := time.Now()
	var out bytes.Buffer
	RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir, Delay: 20 * time.Millisecond}, &out)

	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("run took %v, want at least one 20ms delay between the two items", elapsed)
	}
}

func TestRunBatch_NoDelayAfterLastItem(t *testing.T) {
	outDir := t.TempDir()
	sub := &stubSubmitter{fallback: "x"}

	start := time.Now()
	var out bytes.Buffer
	RunBatch(context.Background(), sub, []Item{{Path: "only.png", Label: "only"}},
		BatchConfig{OutputDir: outDir, Delay: 10 * time.Second}, &out)

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("single-item run took %v, the delay must not follow the final item", elapsed)
	}
}

func TestPipeline_TwoPagePDF(t *testing.T) {
	dir := t.TempDir()
	pdf := touch(t, dir, "notes.pdf")
	overridePageCount(t, func(string) (int, error) { return 2, nil })

	var out bytes.Buffer
	items, err := ExpandInputs(context.Background(), []string{pdf},
		provideFake(&fakeRasterizer{pagesPerPDF: 2}, nil), &out)
	if err != nil {
		t.Fatalf("ExpandInputs: %v", err)
	}

	outDir := filepath.Join(dir, "latex_output")
	sub := &stubSubmitter{fallback: `\begin{document}body\end{document}`}
	res := RunBatch(context.Background(), sub, items, BatchConfig{OutputDir: outDir}, &out)
	if res.Saved != 2 || res.Failed != 0 {
		t.Fatalf("got %+v, want both pages saved", res)
	}

	for _, name := range []string{"notes_page1.txt", "notes_page2.txt"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if string(data) != "body" {
			t.Errorf("%s = %q, want the extracted body", name, data)
		}
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("output dir holds %d entries, want exactly 2", len(entries))
	}
}

func TestRunBatch_DefaultOutputDir(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })

	sub := &stubSubmitter{texts: map[string]string{"a.png": "content"}}
	var out bytes.Buffer
	RunBatch(context.Background(), sub, []Item{{Path: "a.png", Label: "a"}}, BatchConfig{}, &out)

	if _, err := os.Stat(filepath.Join(dir, DefaultOutputDir, "a.txt")); err != nil {
		t.Errorf("default output dir not used: %v", err)
	}
}
