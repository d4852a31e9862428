package noteslatex

// Selectors identifies the three page elements the Uploader interacts with.
// They encode the conversion site's current markup; there is no fallback
// when the site changes, only overriding via [WithSelectors].
type Selectors struct {
	// FileInput locates the upload input. CSS selector.
	FileInput string

	// Submit locates the control that starts the conversion. CSS selector,
	// XPath, or plain text query.
	Submit string

	// Result locates the region where the LaTeX output appears. CSS
	// selector; a selector group is allowed and the first visible match
	// wins.
	Result string
}

// DefaultSelectors returns the selector set for the current notestolatex.com
// markup.
func DefaultSelectors() Selectors {
	return Selectors{
		FileInput: `input[type="file"]`,
		Submit:    `//button[contains(., "Transform")]`,
		Result:    `pre, code, .latex-output, textarea`,
	}
}
