// Package status exposes error codes returned by the streaming substituter.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrNotInMetadata indicates that a file of the streaming mapping has no entry in files.xml
	ErrNotInMetadata = errors.New("not all files found in files.xml")

	// ErrMissingFilepath indicates that the files.xml entry of a streamed file has no filepath attribute
	ErrMissingFilepath = errors.New("no filepath attribute found")

	// ErrCopy indicates that a streaming file could not be copied into the bag
	ErrCopy = errors.New("cannot copy streaming file")
)
