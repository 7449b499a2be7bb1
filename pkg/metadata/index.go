package metadata

import (
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// IndexOption configures BuildIndex
type IndexOption func(*indexer)

type indexer struct {
	l      *zap.Logger
	fs     afero.Fs
	bagDir string
}

// IndexLogger sets a logger to report skipped entries
func IndexLogger(l *zap.Logger) IndexOption {
	return func(i *indexer) {
		if l != nil {
			i.l = l
		}
	}
}

// OnlyPlaceholders retains only the entries which target file in bagDir is currently empty
func OnlyPlaceholders(fs afero.Fs, bagDir string) IndexOption {
	return func(i *indexer) {
		i.fs = fs
		i.bagDir = bagDir
	}
}

// BuildIndex maps the identifier of externally sourced file entries to their path relative to the bag root.
//
// Entries are visited in document order: a duplicate identifier maps to the path of its last entry.
func BuildIndex(doc *Document, opts ...IndexOption) map[string]string {
	idx := &indexer{l: zap.NewNop()}
	for _, apply := range opts {
		apply(idx)
	}

	index := make(map[string]string)
	for _, entry := range doc.Files() {
		if !entry.IsExternal() {
			continue
		}
		id, ok := entry.Identifier()
		if !ok {
			idx.l.Error("no dct:identifier found", zap.String("node", entry.String()))
			continue
		}
		path, ok := entry.Filepath()
		if !ok {
			idx.l.Error("no filepath attribute found", zap.String("node", entry.String()))
			continue
		}
		if idx.fs != nil && !idx.isPlaceholder(id, path) {
			continue
		}
		index[id] = path
	}
	return index
}

func (i *indexer) isPlaceholder(id, path string) bool {
	fi, err := i.fs.Stat(filepath.Join(i.bagDir, filepath.FromSlash(path)))
	if err != nil {
		i.l.Error("cannot stat placeholder", zap.String("id", id), zap.String("path", path), zap.Error(err))
		return false
	}
	if fi.Size() != 0 {
		i.l.Debug("not a placeholder", zap.String("id", id), zap.String("path", path), zap.Int64("size", fi.Size()))
		return false
	}
	return true
}
