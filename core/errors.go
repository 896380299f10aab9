package core

import "errors"

// Error kinds surfaced by the pipeline. Callers match them with errors.Is.
var (
	// ErrFetchFailed covers network and identifier problems.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoHTMLAvailable means arXiv has no HTML rendition of the paper.
	ErrNoHTMLAvailable = errors.New("no HTML available")
	// ErrMalformedInput means the input could not be treated as markup.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnresolvableMath marks a math region that degraded to plain text.
	ErrUnresolvableMath = errors.New("unresolvable math")
	// ErrEmptyResult means a conversion produced no content.
	ErrEmptyResult = errors.New("empty result")
)
