// Package status exposes error codes returned when substituting external AV files.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrMappingMismatch indicates that the mapping file and files.xml do not list the same external files
	ErrMappingMismatch = errors.New("mapping and replaced files do not match")

	// ErrMissingExternalFile indicates that a mapped AV file does not exist
	ErrMissingExternalFile = errors.New("external file not found")

	// ErrCopy indicates that an external file could not be copied into the bag
	ErrCopy = errors.New("cannot copy external file")
)
