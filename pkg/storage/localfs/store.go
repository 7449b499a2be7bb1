// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/status"
	"github.com/spf13/afero"
)

const (
	dirMode  = 0755
	fileMode = 0644
)

// New creates a new local file system backed storage model.
//
// Keys are paths relative to the root of the file system. A nil fs defaults to the OS file system.
func New(fs afero.Fs) storage.Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &localFS{
		fs: fs,
	}
}

// NewAt creates a new local file system backed storage model, rooted at some base directory of fs
func NewAt(fs afero.Fs, base string) storage.Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return New(afero.NewBasePathFs(fs, base))
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, status.ErrStorageAPI.Wrap(err)
	}

	return !fi.IsDir(), nil
}

func (l *localFS) Size(ctx context.Context, key string) (int64, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, status.ErrNotExists.WithDetails("%s", key)
		}
		return 0, status.ErrStorageAPI.Wrap(err)
	}
	if fi.IsDir() {
		return 0, status.ErrNotExists.WithDetails("%s is a directory", key)
	}
	return fi.Size(), nil
}

type localReader struct {
	objectReader io.ReadCloser
}

func (r *localReader) WriteTo(writer io.Writer) (n int64, err error) {
	return storage.PipeIO(writer, r.objectReader)
}

func (r localReader) Close() error {
	return r.objectReader.Close()
}

func (r localReader) Read(p []byte) (n int, err error) {
	return r.objectReader.Read(p)
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotExists.WithDetails("%s", key)
	}
	t, err := l.fs.Open(key)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	return &localReader{
		objectReader: t,
	}, nil
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	dir := filepath.Dir(key)
	if dir != "" {
		if err := l.fs.MkdirAll(dir, dirMode); err != nil {
			return status.ErrStorageAPI.WithDetails("ensuring directories for %q", key).Wrap(err)
		}
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		flag |= os.O_EXCL
	}
	target, err := l.fs.OpenFile(key, flag, fileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return status.ErrExists.WithDetails("%s", key)
		}
		return status.ErrStorageAPI.WithDetails("create record for %q", key).Wrap(err)
	}

	if _, err = storage.PipeIO(target, source); err != nil {
		_ = target.Close()
		return status.ErrStorageAPI.WithDetails("write record for %q", key).Wrap(err)
	}

	if err = target.Close(); err != nil {
		return status.ErrStorageAPI.WithDetails("close record for %q", key).Wrap(err)
	}
	return nil
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return status.ErrStorageAPI.WithDetails("removing %q", key).Wrap(err)
	}
	return nil
}

// Keys lists all regular files, sorted in lexical order
func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	const root = "."
	var res []string
	e := afero.Walk(l.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		if path == root || info.IsDir() {
			return nil
		}
		res = append(res, filepath.ToSlash(path))
		return nil
	})
	if e != nil {
		return nil, e
	}
	return res, nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
