package noteslatex

import (
	"io"
	"time"
)

// Defaults matching the behavior of the conversion site workflow.
const (
	// DefaultTargetURL is the conversion service page.
	DefaultTargetURL = "https://notestolatex.com"

	// DefaultNavTimeout bounds navigation and form interaction per item.
	DefaultNavTimeout = 30 * time.Second

	// DefaultResultTimeout bounds the wait for a conversion result.
	DefaultResultTimeout = 120 * time.Second
)

// uploaderConfig holds internal configuration for an Uploader.
type uploaderConfig struct {
	chromePath    string
	targetURL     string
	selectors     Selectors
	navTimeout    time.Duration
	resultTimeout time.Duration
	progress      io.Writer
	headless      bool
	noSandbox     bool
	autoDownload  bool
}

func defaultConfig() uploaderConfig {
	return uploaderConfig{
		targetURL:     DefaultTargetURL,
		selectors:     DefaultSelectors(),
		navTimeout:    DefaultNavTimeout,
		resultTimeout: DefaultResultTimeout,
		progress:      io.Discard,
	}
}

// Option configures an [Uploader].
type Option func(*uploaderConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *uploaderConfig) {
		c.chromePath = path
	}
}

// WithTargetURL sets the conversion service URL.
// Defaults to [DefaultTargetURL].
func WithTargetURL(rawURL string) Option {
	return func(c *uploaderConfig) {
		c.targetURL = rawURL
	}
}

// WithSelectors overrides the DOM selectors used to drive the page.
// Zero-valued fields keep their defaults. This is the only recourse when
// the service changes its markup.
func WithSelectors(s Selectors) Option {
	return func(c *uploaderConfig) {
		if s.FileInput != "" {
			c.selectors.FileInput = s.FileInput
		}
		if s.Submit != "" {
			c.selectors.Submit = s.Submit
		}
		if s.Result != "" {
			c.selectors.Result = s.Result
		}
	}
}

// WithNavTimeout sets the maximum duration for navigating to the page and
// submitting the form, per item. Defaults to [DefaultNavTimeout]. A zero or
// negative value disables the bound.
func WithNavTimeout(d time.Duration) Option {
	return func(c *uploaderConfig) {
		c.navTimeout = d
	}
}

// WithResultTimeout sets the maximum duration to wait for the conversion
// result to appear, per item. Defaults to [DefaultResultTimeout]. A zero or
// negative value disables the bound.
func WithResultTimeout(d time.Duration) Option {
	return func(c *uploaderConfig) {
		c.resultTimeout = d
	}
}

// WithHeadless runs the browser without a visible window. By default the
// browser is visible so the operator can watch the conversions.
func WithHeadless() Option {
	return func(c *uploaderConfig) {
		c.headless = true
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *uploaderConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary into the user
// cache when no installed browser is found, and uses it for this Uploader.
// The download happens once; later runs reuse the cached binary.
func WithAutoDownload() Option {
	return func(c *uploaderConfig) {
		c.autoDownload = true
	}
}

// WithProgress sets the writer that receives per-step progress lines during
// a submission (file uploaded, waiting for conversion). Progress is
// discarded by default.
func WithProgress(w io.Writer) Option {
	return func(c *uploaderConfig) {
		if w != nil {
			c.progress = w
		}
	}
}
