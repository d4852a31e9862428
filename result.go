package noteslatex

import (
	"io"
	"os"
)

// Result holds the scraped conversion output for one submitted image.
//
// A Result is returned by every submission. It is safe to call its methods
// multiple times; the underlying data is never modified.
type Result struct {
	html string
	text string
}

// HTML returns the raw markup of the result region as scraped from the
// page. Useful for debugging selector drift when the service changes.
func (r *Result) HTML() string {
	return r.html
}

// Text returns the visible text of the result region, the full LaTeX as the
// service rendered it (preamble included, when present).
func (r *Result) Text() string {
	return r.text
}

// Body returns the document body: the text between \begin{document} and
// \end{document}, or the whole text when the markers are absent. See
// [ExtractBody].
func (r *Result) Body() string {
	return ExtractBody(r.text)
}

// WriteTo writes the document body to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Body())
	return int64(n), err
}

// WriteToFile writes the document body to the file at path, creating it if
// needed and overwriting silently.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, []byte(r.Body()), perm)
}

// Len returns the length of the result text in bytes.
func (r *Result) Len() int {
	return len(r.text)
}
