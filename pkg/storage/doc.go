// Copyright © 2018 One Concern

// Package storage provides an interface to handle files addressed by a relative key.
//
// The local file system backend (localfs) is layered over afero, so that a bag,
// an AV source directory or an in-memory tree used in tests are all accessed the same way.
package storage
