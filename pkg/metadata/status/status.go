// Package status exposes error codes returned when handling the metadata documents of a bag.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrMissingDocument indicates that the XML document does not exist
	ErrMissingDocument = errors.New("missing metadata document")

	// ErrInvalidDocument indicates that the XML document could not be parsed
	ErrInvalidDocument = errors.New("invalid metadata document")

	// ErrWriteDocument indicates that the XML document could not be saved
	ErrWriteDocument = errors.New("cannot write metadata document")
)
