package noteslatex

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Uploader].
	ErrClosed = errors.New("noteslatex: uploader is closed")

	// ErrResultTimeout is returned by [Uploader.Submit] when the result
	// region does not become visible within the configured result timeout.
	ErrResultTimeout = errors.New("noteslatex: timed out waiting for conversion result")
)
