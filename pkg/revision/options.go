package revision

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for the converter
type Option func(*Converter)

// Fs holding the input, the mapping, the source directories and the output. It defaults to the OS file system.
func Fs(fs afero.Fs) Option {
	return func(c *Converter) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// AVDir is the root of the external AV files
func AVDir(dir string) Option {
	return func(c *Converter) {
		c.avDir = dir
	}
}

// SpringfieldDir is the root of the streaming files
func SpringfieldDir(dir string) Option {
	return func(c *Converter) {
		c.springfieldDir = dir
	}
}

// Logger for the converter and its components
func Logger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.l = l
		}
	}
}

// Clock sets the source of Created timestamps
func Clock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// IDGenerator sets the source of revision identifiers
func IDGenerator(newID func() string) Option {
	return func(c *Converter) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// DefaultAlgorithms for the payload manifests of bags which declare none
func DefaultAlgorithms(algorithms ...string) Option {
	return func(c *Converter) {
		if len(algorithms) > 0 {
			c.algorithms = algorithms
		}
	}
}
