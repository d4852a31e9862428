package noteslatex

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// resultText flattens a scraped result region to its visible text. <br>
// elements become newlines, all other markup is dropped, and HTML entities
// are decoded. Text inside <pre>/<code>/<textarea> keeps its literal
// newlines, which is where the service renders LaTeX.
func resultText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("br").ReplaceWithHtml("\n")
	return doc.Text()
}
