// Package status exposes error codes returned by the rights based pruner.
package status

import "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"

// ErrDelete indicates that the payload file of a pruned entry could not be deleted
var ErrDelete = errors.New("could not delete")
