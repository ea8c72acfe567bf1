// Package dataprocessing implements the core of the analyzer: parsing
// a raw campaign export file into typed records and computing aggregate
// statistics over them.
//
// The input format is a vendor export that mixes a free-form metadata
// block with a tabular CSV section. The parser locates the tabular
// section by its column-header marker line, extracts header metadata
// from fixed line positions, and converts every well-formed data row
// into a domain.AdRecord. Malformed rows are dropped (and counted),
// malformed numeric fields default to zero; the only fatal condition
// is a missing data-section marker.
//
// Everything in this package is synchronous and free of shared state:
// a parse is a pure function of its input text, and statistics are a
// pure function of the record set.
package dataprocessing
