package services

import "errors"

// ErrNoReport is returned by read operations before any report has
// been uploaded, or after the report was cleared.
var ErrNoReport = errors.New("no report loaded")
