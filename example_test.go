package noteslatex_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	noteslatex "github.com/porticus-lab/go-notes-latex"
)

func Example() {
	// One-shot conversion: launches Chrome, uploads, tears down.
	res, err := noteslatex.SubmitFile(context.Background(), "notes.png",
		noteslatex.WithHeadless(),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Recognized %d characters of LaTeX\n", res.Len())
}

func Example_batch() {
	// Create an uploader (reuses the browser across submissions).
	u, err := noteslatex.NewUploader(
		noteslatex.WithHeadless(),
		noteslatex.WithResultTimeout(2*time.Minute),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer u.Close()

	// Expand PDFs into per-page images and submit everything in order.
	items, err := noteslatex.ExpandInputs(context.Background(),
		[]string{"lecture.pdf", "whiteboard.jpg"}, nil, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}

	summary := noteslatex.RunBatch(context.Background(), u, items,
		noteslatex.BatchConfig{OutputDir: "latex_output"}, os.Stdout)

	fmt.Printf("Saved %d of %d\n", summary.Saved, summary.Total())
}

func ExampleExtractBody() {
	latex := `\documentclass{article}
\begin{document}
E = mc^2
\end{document}`

	fmt.Println(noteslatex.ExtractBody(latex))
	// Output: E = mc^2
}
