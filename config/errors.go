package config

import "fmt"

// ParseError is returned when a config file exists but cannot be parsed.
// A missing config file never produces a ParseError; the file layer is
// simply empty in that case.
type ParseError struct {
	// File is the path of the offending config file.
	File string
	// Err is the underlying parser error, including position information
	// where the format's parser provides it.
	Err error
}

// Error returns the string representation of the error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config file %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }
