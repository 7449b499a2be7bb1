// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"sync"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/status"
)

const (
	// OverWrite replaces an existing object on Put
	OverWrite = false

	// NoOverWrite makes Put fail with status.ErrExists when the object exists already
	NoOverWrite = true

	copyBufferSize = 1024 * 1024
)

// Store implementations know how to read and write files addressed by a relative key.
//
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Size(context.Context, string) (int64, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
}

var buffers = sync.Pool{
	New: func() interface{} {
		b := make([]byte, copyBufferSize)
		return &b
	},
}

// PipeIO copies a reader into a writer, using a pooled buffer
func PipeIO(writer io.Writer, reader io.Reader) (int64, error) {
	bp := buffers.Get().(*[]byte)
	defer buffers.Put(bp)
	return io.CopyBuffer(writer, reader, *bp)
}

// Copy streams the object stored under source in sStore to destination in dStore.
//
// It returns the number of bytes copied.
func Copy(ctx context.Context, sStore Store, source string, dStore Store, destination string, exclusive bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	reader, err := sStore.Get(ctx, source)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	counter := &countingReader{reader: reader}
	if err = dStore.Put(ctx, destination, counter, exclusive); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

// CopyTree copies all objects of sStore to dStore, keeping their keys.
//
// It returns the number of objects and the number of bytes copied.
func CopyTree(ctx context.Context, sStore Store, dStore Store, exclusive bool) (int, int64, error) {
	keys, err := sStore.Keys(ctx)
	if err != nil {
		return 0, 0, status.ErrStorageAPI.Wrap(err)
	}
	var total int64
	for i, key := range keys {
		n, err := Copy(ctx, sStore, key, dStore, key, exclusive)
		total += n
		if err != nil {
			return i, total, err
		}
	}
	return len(keys), total, nil
}

type countingReader struct {
	reader io.Reader
	n      int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.n += int64(n)
	return n, err
}
