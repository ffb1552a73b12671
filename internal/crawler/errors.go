package crawler

import "errors"

// Failure kinds of a crawl run. Each aborts the run before anything is written;
// callers tell them apart with errors.Is.
var (
	// ErrFetch: the batched quote or profile request failed.
	ErrFetch = errors.New("snapshot fetch failed")
	// ErrSymbolMissing: a requested symbol is absent from the batched response.
	ErrSymbolMissing = errors.New("symbol missing from provider response")
	// ErrMissingMajorHolders: the major-holders summary is absent for a symbol.
	ErrMissingMajorHolders = errors.New("major holders summary missing")
	// ErrEmptyHistory: a historical-price window returned no rows.
	ErrEmptyHistory = errors.New("empty price history")
)
