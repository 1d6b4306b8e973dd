package driven

// Extractor turns raw document bytes of one format into normalised plain
// text. Implementations are pure transforms with no side effects.
type Extractor interface {
	// Formats returns the format tags this extractor handles
	// (lower-case file extensions without the dot, e.g. "txt", "md").
	Formats() []string

	// Extract produces normalised plain text from raw bytes. Returns
	// domain.ErrExtractionFailed (wrapped) when parsing succeeds
	// structurally but yields no extractable text.
	Extract(data []byte) (string, error)
}

// ExtractorRegistry dispatches extraction by format tag. It is populated
// at startup; adding a format means registering a new Extractor, not
// branching inside the chunker.
type ExtractorRegistry interface {
	// Register adds an extractor for all formats it declares.
	Register(e Extractor)

	// Extract dispatches to the extractor registered for the format
	// tag. Returns domain.ErrUnsupportedFormat when none is registered.
	Extract(format string, data []byte) (string, error)

	// Formats returns all registered format tags.
	Formats() []string
}
