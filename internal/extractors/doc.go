// Package extractors provides implementations of the Extractor interface
// for various document formats. Each extractor knows how to pull plain
// text out of one format family.
//
// Extractors are registered with the Registry at startup.
package extractors
