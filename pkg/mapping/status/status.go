// Package status exposes error codes returned when loading a mapping file.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrMissingColumn indicates that the header of the mapping file lacks a required column
	ErrMissingColumn = errors.New("missing column in mapping file")

	// ErrInvalidMapping indicates that the mapping file could not be parsed
	ErrInvalidMapping = errors.New("invalid mapping file")

	// ErrMissingStreamingFile indicates that a streaming file listed by the mapping does not exist
	ErrMissingStreamingFile = errors.New("file does not exist in springfield directory")
)
