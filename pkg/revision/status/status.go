// Package status exposes error codes returned by the revision chain builder.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

var (
	// ErrRevisionExists indicates that the directory of a new revision exists already
	ErrRevisionExists = errors.New("revision directory exists already")

	// ErrMissingDirectory indicates that the AV or springfield directory is not configured
	ErrMissingDirectory = errors.New("missing directory")

	// ErrInvalidInput indicates that the input is not a bag in a group directory
	ErrInvalidInput = errors.New("invalid input bag")
)
