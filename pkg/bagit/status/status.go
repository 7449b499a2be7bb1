// Package status exposes error codes returned when reading or writing a bag.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrNotABag indicates that the directory does not hold a bagit.txt declaration
	ErrNotABag = errors.New("not a bag")

	// ErrUnsupportedAlgorithm indicates a manifest algorithm with no known digest
	ErrUnsupportedAlgorithm = errors.New("unsupported manifest algorithm")

	// ErrUnsupportedEncoding indicates a Tag-File-Character-Encoding with no known codec
	ErrUnsupportedEncoding = errors.New("unsupported tag file character encoding")

	// ErrInvalidManifest indicates a malformed manifest line
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrInvalidTagFile indicates a malformed bagit.txt or bag-info.txt line
	ErrInvalidTagFile = errors.New("invalid tag file")
)
