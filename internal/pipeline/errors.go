package pipeline

import "github.com/rotisserie/eris"

// Error taxonomy for the report pipeline. Search and analysis failures are
// deliberately absent: they are degraded to valid values at their point of
// origin and never escape the fan-out boundary.
var (
	// ErrExtraction marks structured output that could not be parsed out of a
	// completion. Local to the stage that issued the call; never user-visible.
	ErrExtraction = eris.New("structured output extraction failed")

	// ErrIdentification is fatal to a whole run: without competitors there is
	// nothing downstream to do.
	ErrIdentification = eris.New("competitor identification failed")

	// ErrSynthesis is fatal to a whole run. A report that cannot be written is
	// not downgraded to a partial one.
	ErrSynthesis = eris.New("report synthesis failed")
)
